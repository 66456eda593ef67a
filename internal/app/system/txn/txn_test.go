package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset"), false},
		{"illegal operation code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"wrapped command error", fmt.Errorf("accept: %w", mongo.CommandError{Code: 263}), true},
		{"other command code", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{"two keywords", errors.New("Transactions are not supported by this deployment"), true},
		{"one keyword", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_WithoutClientIsSequential(t *testing.T) {
	for name, r := range map[string]*Runner{"nil runner": nil, "nil client": New(nil, nil)} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			want := errors.New("step failed")
			err := r.Run(context.Background(), "unit", func(ctx context.Context) error {
				calls++
				return want
			})
			if !errors.Is(err, want) {
				t.Errorf("err = %v, want %v", err, want)
			}
			if calls != 1 {
				t.Errorf("fn called %d times, want 1", calls)
			}
		})
	}
}
