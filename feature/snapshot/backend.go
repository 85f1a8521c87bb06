package snapshot

import (
	"context"
	"fmt"

	"travel-ops/core/storage"
)

// Backend reads and writes the raw snapshot blob.
type Backend interface {
	// Load returns the stored blob. found is false when nothing was saved yet.
	Load(ctx context.Context) (data []byte, found bool, err error)
	// Save replaces the stored blob.
	Save(ctx context.Context, data []byte) error
}

// NewBackend builds the backend named in cfg. The mongo backend connects
// eagerly; callers own the returned closer.
func NewBackend(ctx context.Context, cfg Config, client storage.Client, bucket string) (Backend, func(context.Context) error, error) {
	switch cfg.Backend {
	case BackendStorage, "":
		return NewStorageBackend(client, bucket, cfg.ObjectName), func(context.Context) error { return nil }, nil
	case BackendMongo:
		mc, err := NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			return nil, nil, err
		}
		coll := mc.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return NewMongoBackend(coll, cfg.DocumentID), mc.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
