// Package testutil provides shared helpers for package tests: database
// setup for both store backends, data fixtures, and HTTP request helpers.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/store/sqlstore"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// DefaultMongoURI is used when INKWELL_TEST_MONGO_URI is unset.
const DefaultMongoURI = "mongodb://localhost:27017"

// TestContext returns a context with a generous timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to MongoDB and returns a fresh, uniquely named
// database that is dropped when the test finishes. The test is skipped when
// no server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("INKWELL_TEST_MONGO_URI")
	if uri == "" {
		uri = DefaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("mongo unavailable (%s): %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo unavailable (%s): %v", uri, err)
	}

	name := "inkwell_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// SetupSQLStore opens a private in-memory SQLite store with all tables
// migrated. It is closed when the test finishes.
func SetupSQLStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:inkwell_%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.New().String(), "-", ""))
	st, err := sqlstore.Open(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("sqlstore.Open failed: %v", err)
	}

	ctx, cancel := TestContext()
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("sqlstore.Migrate failed: %v", err)
	}

	t.Cleanup(func() {
		_ = st.Close(context.Background())
	})
	return st
}
