package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mediavault/internal/config"
	"mediavault/internal/logging"
	"mediavault/internal/notifications"
)

// Catalog is the store subset the janitor needs.
type Catalog interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor sweeps expired records on a fixed interval.
type Janitor struct {
	store    Catalog
	notifier notifications.Service
	logger   *slog.Logger

	maxAge   time.Duration
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a janitor from retention settings. The notifier may be nil.
func New(store Catalog, cfg config.Retention, notifier notifications.Service, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Janitor{
		store:    store,
		notifier: notifier,
		logger:   logger,
		maxAge:   time.Duration(cfg.MaxRecordAgeDays) * 24 * time.Hour,
		interval: time.Duration(cfg.SweepIntervalHours) * time.Hour,
	}
}

// Start launches the sweep loop. It returns immediately; Stop shuts the
// loop down. Starting an already running janitor is a no-op.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	j.cancel = cancel
	j.done = done

	go j.loop(loopCtx, done)
}

// Stop terminates the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (j *Janitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.Warn("sweep failed", logging.Error(err))
			}
		}
	}
}

// Sweep deletes every record older than the retention window and returns
// the number removed. Callable directly for manual maintenance.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-j.maxAge)
	removed, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		if j.notifier != nil {
			_ = j.notifier.NotifyError(ctx, err, "sweep")
		}
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("expired records removed",
			logging.Int64("count", removed),
			logging.String("cutoff", cutoff.Format(time.RFC3339)))
		if j.notifier != nil {
			if notifyErr := j.notifier.NotifySweepCompleted(ctx, removed, cutoff); notifyErr != nil {
				j.logger.Warn("sweep notification failed", logging.Error(notifyErr))
			}
		}
	}
	return removed, nil
}
