package mongorepos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/grade"
)

type gradeDoc struct {
	ID         int       `bson:"id"`
	GuildID    int64     `bson:"guild_id"`
	Assignment string    `bson:"assignment"`
	Reviewer   string    `bson:"reviewer"`
	Team       string    `bson:"team"`
	Points     int       `bson:"points"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type gradeRepository struct {
	coll *mongo.Collection
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *mongo.Database) *gradeRepository {
	return &gradeRepository{coll: db.Collection("grades")}
}

func gradeFilter(guildID int64, assignmentName, reviewer, teamName string) bson.M {
	return bson.M{
		"guild_id":   guildID,
		"assignment": assignmentName,
		"reviewer":   reviewer,
		"team":       teamName,
	}
}

func (repo gradeRepository) UpsertGrade(g grade.Grade) (grade.Grade, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var existing gradeDoc
	filter := gradeFilter(g.GuildID, g.Assignment, g.Reviewer, g.Team)
	err := repo.coll.FindOne(ctx, filter).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		if g.ID, err = nextPK(ctx, repo.coll.Database()); err != nil {
			return grade.Grade{}, err
		}
		if _, err = repo.coll.InsertOne(ctx, gradeDoc(g)); err != nil {
			return grade.Grade{}, err
		}
		return g, nil
	}
	if err != nil {
		return grade.Grade{}, err
	}

	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt
	_, err = repo.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"points": g.Points, "updated_at": g.UpdatedAt}})
	if err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo gradeRepository) GetGrade(guildID int64, assignmentName, reviewer, teamName string) (grade.Grade, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc gradeDoc
	if err := repo.coll.FindOne(ctx, gradeFilter(guildID, assignmentName, reviewer, teamName)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, err
	}
	return grade.Grade(doc), nil
}

func (repo gradeRepository) QueryGradesByAssignment(guildID int64, assignmentName string) ([]grade.Grade, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(
		ctx,
		bson.M{"guild_id": guildID, "assignment": assignmentName},
		options.Find().SetSort(bson.D{{Key: "team", Value: 1}, {Key: "reviewer", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []gradeDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	grades := make([]grade.Grade, 0, len(docs))
	for _, doc := range docs {
		grades = append(grades, grade.Grade(doc))
	}
	return grades, nil
}
