package snapshot

// Backend names.
const (
	BackendStorage = "storage"
	BackendMongo   = "mongo"
)

// Config selects and configures the snapshot backend.
type Config struct {
	// Backend is where the snapshot lives (storage, mongo).
	Backend string `mapstructure:"backend" default:"storage"`
	// ObjectName is the object key inside the storage bucket.
	ObjectName string `mapstructure:"object_name" default:"state/snapshot.json"`
	// MongoURI is the MongoDB connection string.
	MongoURI string `mapstructure:"mongo_uri" default:"mongodb://localhost:27017"`
	// MongoUser and MongoPassword are optional credentials.
	MongoUser     string `mapstructure:"mongo_user" default:""`
	MongoPassword string `mapstructure:"mongo_password" default:""`
	// MongoDatabase and MongoCollection locate the snapshot document.
	MongoDatabase   string `mapstructure:"mongo_database" default:"travel_ops"`
	MongoCollection string `mapstructure:"mongo_collection" default:"snapshots"`
	// DocumentID is the _id of the snapshot document.
	DocumentID string `mapstructure:"document_id" default:"current"`
}
