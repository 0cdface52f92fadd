package mongorepos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/darasa/core/settings"
)

type settingsDoc struct {
	ID             int       `bson:"id"`
	GuildID        int64     `bson:"guild_id"`
	RoleID         int64     `bson:"role_id"`
	TeamSize       int       `bson:"team_size"`
	PeerReviewSize int       `bson:"peer_review_size"`
	TeamsLocked    bool      `bson:"teams_locked"`
	ContactEmail   string    `bson:"contact_email"`
	APIKeyHash     []byte    `bson:"api_key_hash"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type settingsRepository struct {
	coll *mongo.Collection
}

var _ settings.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db *mongo.Database) *settingsRepository {
	return &settingsRepository{coll: db.Collection("settings")}
}

func (repo settingsRepository) GetSettings(guildID int64) (settings.Settings, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc settingsDoc
	if err := repo.coll.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return settings.Settings{}, settings.ErrNotFound
		}
		return settings.Settings{}, err
	}
	return settings.Settings(doc), nil
}

func (repo settingsRepository) UpsertSettings(s settings.Settings) (settings.Settings, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var existing settingsDoc
	err := repo.coll.FindOne(ctx, bson.M{"guild_id": s.GuildID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		if s.ID, err = nextPK(ctx, repo.coll.Database()); err != nil {
			return settings.Settings{}, err
		}
		if _, err = repo.coll.InsertOne(ctx, settingsDoc(s)); err != nil {
			return settings.Settings{}, err
		}
		return s, nil
	}
	if err != nil {
		return settings.Settings{}, err
	}

	s.ID = existing.ID
	_, err = repo.coll.UpdateOne(
		ctx,
		bson.M{"guild_id": s.GuildID},
		bson.M{"$set": bson.M{
			"role_id":          s.RoleID,
			"team_size":        s.TeamSize,
			"peer_review_size": s.PeerReviewSize,
			"teams_locked":     s.TeamsLocked,
			"contact_email":    s.ContactEmail,
			"api_key_hash":     s.APIKeyHash,
			"updated_at":       s.UpdatedAt,
		}},
	)
	if err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}
