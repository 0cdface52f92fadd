package mongorepos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/darasa/core/course"
)

type courseDoc struct {
	ID           int       `bson:"id"`
	GuildID      int64     `bson:"guild_id"`
	UserID       int64     `bson:"user_id"`
	Name         string    `bson:"course_name"`
	Abbreviation string    `bson:"course_abbreviation"`
	Section      string    `bson:"course_section"`
	Semester     string    `bson:"semester"`
	CRN          string    `bson:"crn"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type courseRepository struct {
	coll *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *mongo.Database) *courseRepository {
	return &courseRepository{coll: db.Collection("courses")}
}

func (repo courseRepository) GetCourse(guildID, userID int64) (course.Course, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc courseDoc
	if err := repo.coll.FindOne(ctx, bson.M{"guild_id": guildID, "user_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return course.Course(doc), nil
}

func (repo courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	ctx, cancel := opCtx()
	defer cancel()

	id, err := nextPK(ctx, repo.coll.Database())
	if err != nil {
		return course.Course{}, err
	}
	c.ID = id
	if _, err = repo.coll.InsertOne(ctx, courseDoc(c)); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo courseRepository) UpdateCourse(c course.Course) (course.Course, error) {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"id": c.ID},
		bson.M{"$set": bson.M{
			"course_name":         c.Name,
			"course_abbreviation": c.Abbreviation,
			"course_section":      c.Section,
			"semester":            c.Semester,
			"crn":                 c.CRN,
			"updated_at":          c.UpdatedAt,
		}},
	)
	if err != nil {
		return course.Course{}, err
	}
	if res.MatchedCount == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo courseRepository) DeleteCourse(guildID, userID int64) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := repo.coll.DeleteOne(ctx, bson.M{"guild_id": guildID, "user_id": userID})
	return err
}
