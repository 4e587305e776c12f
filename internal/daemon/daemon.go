package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/notifications"
	"biblioaccess/internal/server"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

// sessionSweepInterval is how often expired sessions are purged.
const sessionSweepInterval = time.Hour

// Daemon owns the stores and the HTTP API and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	tasks    *tasks.Store
	users    *users.Store
	notifier notifications.Service
	server   *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New opens the stores and wires the API server. The admin account is seeded
// here so a fresh deployment is immediately usable.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	taskStore, err := tasks.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	userStore, err := users.Open(cfg)
	if err != nil {
		_ = taskStore.Close()
		return nil, fmt.Errorf("open user store: %w", err)
	}
	if _, err := userStore.SeedAdmin(context.Background(), cfg); err != nil {
		_ = taskStore.Close()
		_ = userStore.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	notifier := notifications.NewService(cfg)
	lockPath := filepath.Join(cfg.Paths.LogDir, "bibliod.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		tasks:    taskStore,
		users:    userStore,
		notifier: notifier,
		server:   server.New(cfg, taskStore, userStore, notifier, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and begins serving. Serving stops when ctx
// is canceled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bibliod instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(1)
	go d.sweepSessions(runCtx)

	d.logger.Info("daemon started",
		logging.String("address", d.server.Addr()),
		logging.String("lock", d.lockPath))
	return nil
}

// sweepSessions periodically removes expired tokens so the sessions table
// never grows unbounded.
func (d *Daemon) sweepSessions(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := d.users.PurgeExpired(ctx)
			if err != nil {
				d.logger.Warn("session sweep failed", logging.Error(err))
				continue
			}
			if purged > 0 {
				d.logger.Info("purged expired sessions", logging.Int64("count", purged))
			}
		}
	}
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Stop halts serving and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the stores.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.tasks != nil {
		errs = append(errs, d.tasks.Close())
	}
	if d.users != nil {
		errs = append(errs, d.users.Close())
	}
	return errors.Join(errs...)
}
