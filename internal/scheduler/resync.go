package scheduler

import (
	"context"
	"time"

	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/syncer"
)

// Resyncer periodically refetches the authoritative list for every live
// synchronizer. Pub/sub delivery is best effort, so this bounds how long a
// missed event (or a write that never completed) can keep a session stale.
type Resyncer struct {
	registry      *syncer.Registry
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewResyncer creates a new resyncer.
func NewResyncer(
	registry *syncer.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Resyncer {
	return &Resyncer{
		registry:      registry,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic resync process.
func (r *Resyncer) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.ResyncAll(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual resync triggered")
				r.ResyncAll(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the resyncer.
func (r *Resyncer) Stop() {
	close(r.stopCh)
}

// ResyncAll refetches the full list for every live synchronizer.
// Synchronizers with an optimistic write still in flight are skipped: a
// full replacement would drop the pending record before its confirmation
// arrives. The next tick catches them.
func (r *Resyncer) ResyncAll(ctx context.Context) {
	count := 0
	r.registry.ForEach(func(s *syncer.Synchronizer) {
		if s.HasPending() {
			r.logger.Debug("skipping resync, writes in flight")
			return
		}
		count++
		if err := s.Resync(ctx); err != nil {
			r.logger.Warn("periodic resync failed", logger.Error(err))
		}
	})
	if count > 0 {
		r.logger.Debug("periodic resync complete", logger.Int("sessions", count))
	}
}
