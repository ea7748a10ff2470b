package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"discd/internal/config"
	"discd/internal/disc"
	"discd/internal/logging"
	"discd/internal/player"
)

// discMonitor polls the drive for media changes. Insertion warms nothing but
// clears the stale TOC cache; removal additionally stops any session still
// streaming a disc that no longer exists.
type discMonitor struct {
	logger       *slog.Logger
	drive        driveStatus
	player       *player.Player
	pollInterval time.Duration

	mu          sync.Mutex
	running     bool
	discPresent bool
	known       bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newDiscMonitor(cfg *config.Config, drive driveStatus, p *player.Player, logger *slog.Logger) *discMonitor {
	poll := cfg.PollInterval()
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &discMonitor{
		logger:       logging.NewComponentLogger(logger, "disc-monitor"),
		drive:        drive,
		player:       p,
		pollInterval: poll,
	}
}

func (m *discMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("disc monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop()
	return nil
}

func (m *discMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *discMonitor) loop() {
	defer m.wg.Done()

	m.poll()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *discMonitor) poll() {
	status, err := m.drive.Status()
	if err != nil {
		m.logger.Warn("drive status poll failed; will retry", logging.Error(err))
		return
	}
	present := status == disc.DriveStatusDiscOK

	m.mu.Lock()
	changed := !m.known || present != m.discPresent
	m.known = true
	m.discPresent = present
	m.mu.Unlock()

	if !changed {
		return
	}

	if present {
		m.logger.Info("disc inserted")
		m.player.InvalidateCache()
		return
	}

	m.logger.Info("disc removed", logging.String("drive_status", status.String()))
	m.player.InvalidateCache()
	m.player.Stop()
}
