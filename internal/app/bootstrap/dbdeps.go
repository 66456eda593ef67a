// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/campaignhub/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when login limits are kept in memory.
	Redis *redis.Client

	// background is shared by Startup and Shutdown, which receive DBDeps by
	// value.
	background *background
}

type background struct {
	invitationExpiry *workers.InvitationExpiry
}
