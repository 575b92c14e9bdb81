// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends the app talks to: MongoDB and the object
// storage bucket that receives uploads.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Bucket        objectstore.Bucket
}
