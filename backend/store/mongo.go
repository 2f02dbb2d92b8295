package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGateway stores documents in MongoDB, one Mongo collection per
// logical collection. The document id is "userID/key" so per-user
// cascades can match on the user_id field.
type MongoGateway struct {
	db *mongo.Database
}

func NewMongoGateway(ctx context.Context, uri, dbName string) (*MongoGateway, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoGateway{db: client.Database(dbName)}, nil
}

func docID(userID, key string) string {
	return userID + "/" + key
}

func (g *MongoGateway) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	var raw bson.M
	err := g.db.Collection(collection).
		FindOne(ctx, bson.M{"_id": docID(userID, key)}).
		Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc := Document{}
	for k, v := range raw {
		if k == "_id" || k == "user_id" {
			continue
		}
		doc[k] = v
	}
	return doc, nil
}

func (g *MongoGateway) Set(ctx context.Context, userID, collection, key string, fields Document) error {
	doc := bson.M{"user_id": userID}
	for k, v := range fields {
		doc[k] = v
	}

	_, err := g.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": docID(userID, key)},
		doc,
		options.Replace().SetUpsert(true))
	return err
}

func (g *MongoGateway) Update(ctx context.Context, userID, collection, key string, fields Document) error {
	set := bson.M{"user_id": userID}
	for k, v := range fields {
		set[k] = v
	}

	_, err := g.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": docID(userID, key)},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	return err
}

func (g *MongoGateway) Delete(ctx context.Context, userID, collection, key string) error {
	_, err := g.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": docID(userID, key)})
	return err
}

func (g *MongoGateway) DeleteUser(ctx context.Context, userID string) error {
	for _, collection := range []string{CollectionProfiles, CollectionStudyData} {
		if _, err := g.db.Collection(collection).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
			return err
		}
	}
	return nil
}
