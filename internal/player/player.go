package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"discd/internal/disc"
	"discd/internal/logging"
	"discd/internal/metadata"
)

// Player coordinates disc info and playback. Play, Stop, and track advances
// are serialized so the single-session invariant holds: a new extraction
// process is never spawned while an old one still owns the drive.
type Player struct {
	reader     TOCReader
	supervisor Supervisor
	resolver   Resolver
	grace      time.Duration
	infoCache  time.Duration
	logger     *slog.Logger

	opMu sync.Mutex // serializes Play, Stop, and advance
	mu   sync.Mutex // guards the fields below

	state    State
	session  *Session
	cachedAt time.Time
	cached   *disc.TOC
}

// New creates a Player. grace bounds how long a stopping extraction process
// may linger before SIGKILL; infoCache bounds how often info requests touch
// the drive.
func New(reader TOCReader, supervisor Supervisor, resolver Resolver, grace, infoCache time.Duration, logger *slog.Logger) *Player {
	return &Player{
		reader:     reader,
		supervisor: supervisor,
		resolver:   resolver,
		grace:      grace,
		infoCache:  infoCache,
		logger:     logging.NewComponentLogger(logger, "player"),
		state:      StateIdle,
	}
}

// Status returns a snapshot of the player.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := Status{State: p.state}
	if p.session != nil {
		status.Track = p.session.track
		status.SessionID = p.session.id
		status.Fingerprint = p.session.toc.Fingerprint()
	}
	return status
}

// Info resolves the inserted disc into display metadata. While a session is
// streaming, the session's table of contents is reused since the disc cannot
// change under an open tray lock.
func (p *Player) Info(ctx context.Context) (*metadata.Disc, error) {
	toc, err := p.currentTOC(ctx)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(ctx, toc), nil
}

// Rename stores user-supplied names for the inserted disc.
func (p *Player) Rename(ctx context.Context, artist, title string, trackTitles map[int]string) (*metadata.Disc, error) {
	toc, err := p.currentTOC(ctx)
	if err != nil {
		return nil, err
	}
	return p.resolver.SetNames(ctx, toc, artist, title, trackTitles)
}

// Play starts streaming the given 1-based track, replacing any running
// session. The track is validated against the disc before the running session
// is disturbed, so an out-of-range request leaves playback untouched.
func (p *Player) Play(ctx context.Context, track int) (*Session, error) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	toc, err := p.currentTOC(ctx)
	if err != nil {
		return nil, err
	}
	if track < 1 || track > toc.TrackCount() {
		return nil, ErrTrackOutOfRange
	}

	p.mu.Lock()
	old := p.session
	if old != nil {
		p.state = StateStopping
	}
	p.mu.Unlock()

	if old != nil {
		p.logger.Info("replacing running session",
			logging.String(logging.FieldSessionID, old.id),
			logging.Int(logging.FieldTrack, old.currentTrack()),
		)
		old.shutdown(p.grace)
	}

	p.mu.Lock()
	p.session = nil
	p.state = StateStarting
	p.mu.Unlock()

	proc, err := p.supervisor.Start(ctx, track)
	if err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return nil, err
	}

	session := &Session{
		player: p,
		id:     uuid.NewString(),
		toc:    toc,
		track:  track,
		proc:   proc,
	}

	p.mu.Lock()
	p.session = session
	p.state = StateStreaming
	p.mu.Unlock()

	p.logger.Info("session started",
		logging.String(logging.FieldSessionID, session.id),
		logging.Int(logging.FieldTrack, track),
		logging.String(logging.FieldDiscID, toc.Fingerprint()),
	)
	return session, nil
}

// Stop tears down the running session. Calling Stop with no session is a
// no-op.
func (p *Player) Stop() {
	p.opMu.Lock()
	defer p.opMu.Unlock()
	p.stopCurrent(nil)
}

// StopSession tears down the given session if it is still the running one.
// Used when a streaming client disconnects.
func (p *Player) StopSession(s *Session) {
	p.opMu.Lock()
	defer p.opMu.Unlock()
	p.stopCurrent(s)
}

// stopCurrent terminates the running session. When only is non-nil, other
// sessions are left alone. Callers hold opMu.
func (p *Player) stopCurrent(only *Session) {
	p.mu.Lock()
	session := p.session
	if session == nil || (only != nil && session != only) {
		p.mu.Unlock()
		return
	}
	p.state = StateStopping
	p.mu.Unlock()

	session.shutdown(p.grace)

	p.mu.Lock()
	p.session = nil
	p.state = StateIdle
	p.mu.Unlock()

	p.logger.Info("session stopped",
		logging.String(logging.FieldSessionID, session.id),
		logging.Int(logging.FieldTrack, session.currentTrack()),
	)
}

// advance moves a session to its next track after a clean end-of-track. It
// returns the new process, or false when the session is finished or no longer
// current.
func (p *Player) advance(s *Session, finished Process) (Process, bool) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	// Reap and release the finished process before touching the drive again.
	finished.Terminate(p.grace)

	p.mu.Lock()
	if p.session != s {
		p.mu.Unlock()
		return nil, false
	}
	next := s.track + 1
	if next > s.toc.TrackCount() {
		p.session = nil
		p.state = StateIdle
		p.mu.Unlock()
		p.logger.Info("disc finished",
			logging.String(logging.FieldSessionID, s.id),
		)
		return nil, false
	}
	p.mu.Unlock()

	proc, err := p.supervisor.Start(context.Background(), next)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.session = nil
		p.state = StateIdle
		p.logger.Error("failed to advance to next track",
			logging.String(logging.FieldSessionID, s.id),
			logging.Int(logging.FieldTrack, next),
			logging.Error(err),
		)
		return nil, false
	}
	s.track = next
	s.proc = proc
	p.logger.Info("advanced to next track",
		logging.String(logging.FieldSessionID, s.id),
		logging.Int(logging.FieldTrack, next),
	)
	return proc, true
}

// InvalidateCache drops the cached table of contents. Called when the drive
// reports a media change.
func (p *Player) InvalidateCache() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

// currentTOC returns the session's table of contents when streaming, a fresh
// cached copy when idle, or reads the drive.
func (p *Player) currentTOC(ctx context.Context) (*disc.TOC, error) {
	p.mu.Lock()
	if p.session != nil {
		toc := p.session.toc
		p.mu.Unlock()
		return toc, nil
	}
	if p.cached != nil && time.Since(p.cachedAt) < p.infoCache {
		toc := p.cached
		p.mu.Unlock()
		return toc, nil
	}
	p.mu.Unlock()

	toc, err := p.reader.ReadTOC(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.cached = nil
		return nil, err
	}
	p.cached = toc
	p.cachedAt = time.Now()
	return toc, nil
}
