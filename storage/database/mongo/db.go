// Package mongorepos implements the storage repositories on MongoDB.
package mongorepos

import (
	"context"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/darasa/core"
)

const opTimeout = 5 * time.Second

func Open(conf *core.Config) (*mongo.Database, error) {
	u := url.URL{
		Scheme: "mongodb",
		Host:   conf.Database.Address(),
	}
	if conf.Database.User != "" {
		u.User = url.UserPassword(conf.Database.User, conf.Database.Password)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(u.String()))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client.Database(conf.Database.Name), nil
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// nextPK hands out sequential integer primary keys from a counters collection.
func nextPK(ctx context.Context, db *mongo.Database) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": "pk"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, errors.Wrap(err, "incrementing pk counter")
	}
	return counter.Seq, nil
}
