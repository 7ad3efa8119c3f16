package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/janitor"
	"mediavault/internal/logging"
	"mediavault/internal/match"
	"mediavault/internal/resolver"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *catalog.Store
	cascade     *match.Cascade
	coordinator *resolver.Coordinator
	janitor     *janitor.Janitor
	api         *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	CatalogDBPath string
	LockFilePath  string
	SweepInterval time.Duration
	RetentionDays int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, cascade *match.Cascade, coordinator *resolver.Coordinator, sweep *janitor.Janitor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || cascade == nil || coordinator == nil {
		return nil, errors.New("daemon requires config, store, cascade, and coordinator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "mediavaultd.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		cascade:     cascade,
		coordinator: coordinator,
		janitor:     sweep,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, logger.With(logging.String(logging.FieldComponent, "api")))
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock and launches the API server and janitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediavault daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			cancel()
			d.cancel = nil
			_ = d.lock.Unlock()
			return err
		}
	}
	if d.janitor != nil {
		d.janitor.Start(runCtx)
	}

	d.running.Store(true)
	d.logger.Info("mediavault daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.janitor != nil {
		d.janitor.Stop()
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("mediavault daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports runtime information for the status endpoint.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		CatalogDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		SweepInterval: time.Duration(d.cfg.Retention.SweepIntervalHours) * time.Hour,
		RetentionDays: d.cfg.Retention.MaxRecordAgeDays,
	}
}

// Addr returns the API server's listen address, or empty when the API is
// disabled. Useful for tests binding to port zero.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
