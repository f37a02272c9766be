// internal/app/bootstrap/dbdeps.go
package bootstrap

import "go.mongodb.org/mongo-driver/mongo"

// DBDeps carries the database handles created during ConnectDB and
// threaded through the rest of the lifecycle hooks.
type DBDeps struct {
	TaskHiveMongoClient   *mongo.Client
	TaskHiveMongoDatabase *mongo.Database
}
