// Package daemon runs the tracker in the background: a cron schedule pulls
// the remote document, recomputes the remaining days and pushes pending
// changes. On Windows a system tray icon exposes the state.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SyncFunc performs one full sync cycle and returns the remaining days.
type SyncFunc func() (remaining int, err error)

// Daemon represents the daemon process
type Daemon struct {
	syncFn     SyncFunc
	schedule   string
	systemTray bool
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	cron       *cron.Cron
	trayApp    *TrayApp

	mu            sync.Mutex
	syncRunning   bool // Flag to prevent concurrent sync operations
	lastSyncTime  time.Time
	lastRemaining int
	hasSynced     bool // At least one sync succeeded
	lastErr       error
}

// New creates a daemon. schedule is a cron expression.
func New(syncFn SyncFunc, schedule string, systemTray bool, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		syncFn:     syncFn,
		schedule:   schedule,
		systemTray: systemTray,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the daemon
func (d *Daemon) Start() error {
	// Initialize system tray if enabled (Windows only)
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			// Fall back to non-tray mode
			return d.run()
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.run()
}

// run installs the cron schedule and blocks until stopped.
func (d *Daemon) run() error {
	d.cron = cron.New()
	entryID, err := d.cron.AddFunc(d.schedule, func() {
		if err := d.runSync(); err != nil {
			d.logger.Error("Scheduled sync failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", d.schedule, err)
	}

	d.cron.Start()
	d.logger.Info("Daemon started",
		zap.String("schedule", d.schedule),
		zap.Time("next_run", d.cron.Entry(entryID).Next))

	// Run initial sync immediately
	go func() {
		if err := d.runSync(); err != nil {
			d.logger.Error("Initial sync failed", zap.Error(err))
		}
	}()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-d.ctx.Done():
		d.logger.Info("Daemon stopped")
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Stop()
	}

	stopCtx := d.cron.Stop()
	<-stopCtx.Done()
	if d.trayApp != nil {
		d.trayApp.Stop()
	}
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runSync executes one sync cycle. Protected against concurrent runs.
func (d *Daemon) runSync() error {
	d.mu.Lock()
	if d.syncRunning {
		d.mu.Unlock()
		d.logger.Warn("Sync already running, skipping concurrent execution")
		return fmt.Errorf("sync already in progress")
	}
	d.syncRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.syncRunning = false
		d.mu.Unlock()
	}()

	d.logger.Info("Running sync")
	remaining, err := d.syncFn()

	d.mu.Lock()
	d.lastSyncTime = time.Now()
	d.lastErr = err
	if err == nil {
		d.lastRemaining = remaining
		d.hasSynced = true
	}
	d.mu.Unlock()

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	d.logger.Info("Sync completed", zap.Int("remaining_days", remaining))
	if d.trayApp != nil {
		d.trayApp.UpdateRemaining(remaining)
	}
	return nil
}

// SyncNow triggers an immediate sync (called from tray menu)
func (d *Daemon) SyncNow() {
	d.logger.Info("Manual sync triggered")
	if err := d.runSync(); err != nil {
		d.logger.Error("Manual sync failed", zap.Error(err))
		if d.trayApp != nil {
			d.trayApp.ShowNotification("Sync Failed", fmt.Sprintf("Error: %v", err))
		}
		return
	}
	if d.trayApp != nil {
		d.trayApp.ShowNotification("Sync Completed", "Holiday data is up to date")
	}
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":  true,
		"schedule": d.schedule,
	}
	if !d.lastSyncTime.IsZero() {
		status["last_sync"] = d.lastSyncTime.Format("2006-01-02 15:04:05")
	}
	if d.hasSynced {
		status["remaining_days"] = d.lastRemaining
	}
	if d.lastErr != nil {
		status["last_error"] = d.lastErr.Error()
	}
	return status
}
