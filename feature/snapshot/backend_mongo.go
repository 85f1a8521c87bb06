package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoClient connects to MongoDB and pings it.
func NewMongoClient(ctx context.Context, uri, username, password string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	if username != "" && password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: username,
			Password: password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// snapshotDocument stores the blob as text so numbers survive unchanged.
type snapshotDocument struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoBackend keeps the snapshot as one document of a collection.
type MongoBackend struct {
	collection *mongo.Collection
	id         string
	now        func() time.Time
}

// NewMongoBackend creates a backend for the document with _id id.
func NewMongoBackend(collection *mongo.Collection, id string) *MongoBackend {
	return &MongoBackend{collection: collection, id: id, now: time.Now}
}

func (b *MongoBackend) Load(ctx context.Context) ([]byte, bool, error) {
	var doc snapshotDocument
	err := b.collection.FindOne(ctx, bson.M{"_id": b.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find snapshot %s: %w", b.id, err)
	}
	return []byte(doc.Data), true, nil
}

func (b *MongoBackend) Save(ctx context.Context, data []byte) error {
	doc := snapshotDocument{ID: b.id, Data: string(data), UpdatedAt: b.now().UTC()}
	_, err := b.collection.ReplaceOne(ctx, bson.M{"_id": b.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", b.id, err)
	}
	return nil
}
