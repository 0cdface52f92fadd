package mongorepos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/team"
)

type teamDoc struct {
	ID            int       `bson:"id"`
	GuildID       int64     `bson:"guild_id"`
	Name          string    `bson:"name"`
	NameLowercase string    `bson:"name_lowercase"`
	ChannelID     int64     `bson:"channel_id"`
	Members       []int64   `bson:"members"`
	PeerReview    []string  `bson:"peer_review"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (doc teamDoc) toTeam() team.Team {
	return team.Team(doc)
}

type teamRepository struct {
	coll *mongo.Collection
}

var _ team.Repository = (*teamRepository)(nil)

func NewTeamRepository(db *mongo.Database) *teamRepository {
	return &teamRepository{coll: db.Collection("teams")}
}

func (repo teamRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{"guild_id": guildID, "name_lowercase": nameLowercase})
	if err != nil {
		return err
	}
	if n > 0 {
		return team.ErrTeamExists
	}
	return nil
}

func (repo teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	ctx, cancel := opCtx()
	defer cancel()

	id, err := nextPK(ctx, repo.coll.Database())
	if err != nil {
		return team.Team{}, err
	}
	t.ID = id
	if t.Members == nil {
		t.Members = []int64{}
	}
	// PeerReview stays nil (stored as null) until a distribution is applied.
	if _, err = repo.coll.InsertOne(ctx, teamDoc(t)); err != nil {
		return team.Team{}, err
	}
	return t, nil
}

func (repo teamRepository) QueryAllTeams(guildID int64) ([]team.Team, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(ctx, bson.M{"guild_id": guildID}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []teamDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	teams := make([]team.Team, 0, len(docs))
	for _, doc := range docs {
		teams = append(teams, doc.toTeam())
	}
	return teams, nil
}

func (repo teamRepository) getOne(filter bson.M) (team.Team, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc teamDoc
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}
	return doc.toTeam(), nil
}

func (repo teamRepository) GetTeamByName(guildID int64, nameLowercase string) (team.Team, error) {
	return repo.getOne(bson.M{"guild_id": guildID, "name_lowercase": nameLowercase})
}

func (repo teamRepository) GetTeamByMember(guildID, userID int64) (team.Team, error) {
	return repo.getOne(bson.M{"guild_id": guildID, "members": userID})
}

func (repo teamRepository) UpdateTeam(t team.Team) (team.Team, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if t.Members == nil {
		t.Members = []int64{}
	}
	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"id": t.ID},
		bson.M{"$set": bson.M{
			"name":           t.Name,
			"name_lowercase": t.NameLowercase,
			"channel_id":     t.ChannelID,
			"members":        t.Members,
			"peer_review":    t.PeerReview,
			"updated_at":     t.UpdatedAt,
		}},
	)
	if err != nil {
		return team.Team{}, err
	}
	if res.MatchedCount == 0 {
		return team.Team{}, team.ErrNotFound
	}
	return t, nil
}

func (repo teamRepository) SetPeerReview(guildID int64, nameLowercase string, reviews []string) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"guild_id": guildID, "name_lowercase": nameLowercase},
		bson.M{"$set": bson.M{"peer_review": reviews, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (repo teamRepository) RenamePeerReviewRefs(guildID int64, oldName, newName string) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := repo.coll.UpdateMany(
		ctx,
		bson.M{"guild_id": guildID, "peer_review": oldName},
		bson.M{"$set": bson.M{"peer_review.$[elem]": newName, "updated_at": time.Now().UTC()}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"elem": oldName}}}),
	)
	return err
}

func (repo teamRepository) RemovePeerReviewRefs(guildID int64, name string) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := repo.coll.UpdateMany(
		ctx,
		bson.M{"guild_id": guildID, "peer_review": name},
		bson.M{
			"$pull": bson.M{"peer_review": name},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (repo teamRepository) DeleteTeam(guildID int64, nameLowercase string) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := repo.coll.DeleteOne(ctx, bson.M{"guild_id": guildID, "name_lowercase": nameLowercase})
	return err
}
