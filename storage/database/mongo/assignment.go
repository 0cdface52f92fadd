package mongorepos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentDoc struct {
	ID            int       `bson:"id"`
	GuildID       int64     `bson:"guild_id"`
	Name          string    `bson:"name"`
	NameLowercase string    `bson:"name_lowercase"`
	Points        int       `bson:"points"`
	DueDate       time.Time `bson:"due_date"`
	Instructions  string    `bson:"instructions"`
	PeerReview    bool      `bson:"peer_review"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type assignmentRepository struct {
	coll *mongo.Collection
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *mongo.Database) *assignmentRepository {
	return &assignmentRepository{coll: db.Collection("assignments")}
}

func (repo assignmentRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{"guild_id": guildID, "name_lowercase": nameLowercase})
	if err != nil {
		return err
	}
	if n > 0 {
		return assignment.ErrAssignmentExists
	}
	return nil
}

func (repo assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	ctx, cancel := opCtx()
	defer cancel()

	id, err := nextPK(ctx, repo.coll.Database())
	if err != nil {
		return assignment.Assignment{}, err
	}
	a.ID = id
	if _, err = repo.coll.InsertOne(ctx, assignmentDoc(a)); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo assignmentRepository) QueryAllAssignments(guildID int64) ([]assignment.Assignment, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(
		ctx,
		bson.M{"guild_id": guildID},
		options.Find().SetSort(bson.D{{Key: "name_lowercase", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []assignmentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	assignments := make([]assignment.Assignment, 0, len(docs))
	for _, doc := range docs {
		assignments = append(assignments, assignment.Assignment(doc))
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignmentByName(guildID int64, nameLowercase string) (assignment.Assignment, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc assignmentDoc
	if err := repo.coll.FindOne(ctx, bson.M{"guild_id": guildID, "name_lowercase": nameLowercase}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, err
	}
	return assignment.Assignment(doc), nil
}

func (repo assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"id": a.ID},
		bson.M{"$set": bson.M{
			"name":           a.Name,
			"name_lowercase": a.NameLowercase,
			"points":         a.Points,
			"due_date":       a.DueDate,
			"instructions":   a.Instructions,
			"peer_review":    a.PeerReview,
			"updated_at":     a.UpdatedAt,
		}},
	)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if res.MatchedCount == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(guildID int64, nameLowercase string) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := repo.coll.DeleteOne(ctx, bson.M{"guild_id": guildID, "name_lowercase": nameLowercase})
	return err
}
