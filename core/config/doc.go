// Package config provides configuration management for the travel-ops service.
//
// It loads an optional .env file with godotenv, then lets Viper read
// environment variables on top of the defaults declared in struct tags.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, shutdown timeout
//   - Database: driver (mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials and bucket
//   - Snapshot: backend (storage, mongo) and object or collection names
//   - Metrics: Prometheus namespace and path
//   - Log: level and format
//
// Nested keys map to upper-case env vars, e.g. SNAPSHOT_BACKEND=mongo.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
