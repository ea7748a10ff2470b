package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"discd/internal/config"
	"discd/internal/disc"
	"discd/internal/logging"
	"discd/internal/player"
)

// driveStatus reports the drive tray/medium state without reading the TOC.
type driveStatus interface {
	Status() (disc.DriveStatus, error)
}

// Daemon coordinates the player, drive monitors, and HTTP API, and enforces
// single-instance execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	player      *player.Player
	drive       driveStatus
	ejector     disc.Ejector
	libraryPath string

	lockPath string
	lock     *flock.Flock

	api     *apiServer
	monitor *discMonitor
	netlink *netlinkMonitor

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	Device       string        `json:"device"`
	DriveStatus  string        `json:"drive_status"`
	Player       player.Status `json:"player"`
	LockFilePath string        `json:"lock_file"`
	LibraryPath  string        `json:"library_db"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, p *player.Player, drive driveStatus, ejector disc.Ejector, libraryPath string, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || p == nil || drive == nil {
		return nil, errors.New("daemon requires config, player, and drive reader")
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "discd.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "daemon"),
		player:      p,
		drive:       drive,
		ejector:     ejector,
		libraryPath: libraryPath,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	d.monitor = newDiscMonitor(cfg, drive, p, logger)
	d.netlink = newNetlinkMonitor(cfg, p, logger)
	return d, nil
}

// Start acquires the daemon lock and launches the API server and drive
// monitors. It returns once everything is running; Stop tears it down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another discd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}
	if err := d.monitor.Start(runCtx); err != nil {
		d.api.stop()
		cancel()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}
	_ = d.netlink.Start(runCtx)

	d.running.Store(true)
	d.logger.Info("discd started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldDevice, d.cfg.Drive.Device),
	)
	return nil
}

// Stop halts playback and background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.netlink.Stop()
	d.monitor.Stop()
	d.player.Stop()
	d.api.stop()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("discd stopped")
}

// Status returns daemon runtime information.
func (d *Daemon) Status() Status {
	driveState := disc.DriveStatusNoInfo
	if state, err := d.drive.Status(); err == nil {
		driveState = state
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Device:       d.cfg.Drive.Device,
		DriveStatus:  driveState.String(),
		Player:       d.player.Status(),
		LockFilePath: d.lockPath,
		LibraryPath:  d.libraryPath,
	}
}

// Eject stops playback and opens the drive tray.
func (d *Daemon) Eject(ctx context.Context) error {
	if d.ejector == nil {
		return errors.New("ejector unavailable")
	}
	d.player.Stop()
	if err := d.ejector.Eject(ctx, d.cfg.Drive.Device); err != nil {
		return err
	}
	d.player.InvalidateCache()
	d.logger.Info("tray ejected", logging.String(logging.FieldDevice, d.cfg.Drive.Device))
	return nil
}

// Addr returns the API listen address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
