package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per show in a MongoDB collection
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

type record struct {
	ShowID  string    `bson:"show_id"`
	LastRun time.Time `bson:"last_run"`
}

// NewMongoStore creates a store; call Connect before use
func NewMongoStore(connectionString, databaseName, collectionName string) *MongoStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &MongoStore{}
	}

	return &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(databaseName).Collection(collectionName),
	}
}

// Connect verifies the connection to MongoDB
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.mongoClient.Ping(ctx, nil)
}

// Close implements Store
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// Last implements Store
func (s *MongoStore) Last(ctx context.Context, showID string) (time.Time, bool, error) {
	if s.collection == nil {
		return time.Time{}, false, fmt.Errorf("collection not initialized")
	}

	var rec record
	err := s.collection.FindOne(ctx, bson.M{"show_id": showID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query history: %w", err)
	}
	return rec.LastRun, true, nil
}

// Set implements Store. The show id is the upsert key.
func (s *MongoStore) Set(ctx context.Context, showID string, t time.Time) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"show_id": showID}
	update := bson.M{"$set": record{ShowID: showID, LastRun: t}}
	opts := options.Update().SetUpsert(true)

	_, err := s.collection.UpdateOne(ctx, filter, update, opts)
	return err
}
