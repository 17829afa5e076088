// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/inkwell/internal/app/store"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// DBDeps holds database/back-end dependencies for the app.
// Store is always set; the backend-specific handles are set only for the
// backend in use.
type DBDeps struct {
	Store store.Store

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	SQL *gorm.DB
}
