package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTestMongoURI is used when CAMPAIGNHUB_TEST_MONGO_URI is unset.
const DefaultTestMongoURI = "mongodb://localhost:27017"

// TestContext returns a context with a timeout suitable for store tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

// SetupTestDB connects to MongoDB, creates a uniquely named database with
// all indexes, and drops it when the test finishes. The test is skipped
// when MongoDB is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	client := connect(t)

	name := "campaignhub_test_" + strings.ToLower(primitive.NewObjectID().Hex())
	db := client.Database(name)

	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// SetupTestClient returns a connected client for tests that need sessions
// or change streams. It skips like SetupTestDB.
func SetupTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	client := connect(t)
	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = client.Disconnect(ctx)
	})
	return client
}

func connect(t *testing.T) *mongo.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in -short mode")
	}
	uri := os.Getenv("CAMPAIGNHUB_TEST_MONGO_URI")
	if uri == "" {
		uri = DefaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB not reachable at %s: %v", uri, err)
	}
	return client
}

// RequireReplicaSet skips the test unless client is connected to a
// deployment that supports transactions and change streams.
func RequireReplicaSet(t *testing.T, client *mongo.Client) {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()
	var hello struct {
		SetName string `bson:"setName"`
	}
	res := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}})
	if err := res.Decode(&hello); err != nil || hello.SetName == "" {
		t.Skipf("MongoDB is not a replica set (%v)", err)
	}
}
