package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Sweeper persists the expired status for overdue pending invitations.
// *invitations.Service satisfies it.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// InvitationExpiry is a background worker that periodically marks pending
// invitations past their expiry as expired. Reads never depend on it; the
// effective status is computed at read time.
type InvitationExpiry struct {
	sweeper  Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewInvitationExpiry creates the worker. interval is how often to sweep.
func NewInvitationExpiry(s Sweeper, logger *zap.Logger, interval time.Duration) *InvitationExpiry {
	if logger == nil {
		logger = zap.L()
	}
	return &InvitationExpiry{
		sweeper:  s,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval.
func (w *InvitationExpiry) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invitation expiry worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *InvitationExpiry) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("invitation expiry worker stopped")
}

func (w *InvitationExpiry) run() {
	defer w.wg.Done()

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *InvitationExpiry) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	count, err := w.sweeper.SweepExpired(ctx)
	if err != nil {
		w.log.Error("invitation expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("expired overdue invitations", zap.Int64("count", count))
	}
}
