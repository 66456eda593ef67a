// Package txn runs related writes inside a MongoDB multi-document
// transaction when the deployment supports one, and falls back to running
// them sequentially on a standalone server.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, or an operation illegal inside one).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}

// Runner executes units of work against one client.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a Runner. A nil client makes every Run sequential.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, log: logger}
}

// Run calls fn inside a transaction. When the deployment cannot run
// transactions, fn is called again with the plain context, so every step of
// fn must be idempotent. Writes fn performed before a failure are committed
// on the sequential path.
func (r *Runner) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if r == nil || r.client == nil {
		return fn(ctx)
	}
	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.log.Debug("transactions unavailable; running sequentially", zap.String("unit", name))
		return fn(ctx)
	}
	return err
}
