package player

import (
	"errors"
	"fmt"
	"io"
	"time"

	"discd/internal/disc"
)

// Session is a playback session streaming WAV audio. It reads the current
// track's extraction process and advances across track boundaries, so one
// Session spans the rest of the disc. Read returns io.EOF when the disc
// finishes or the session is stopped; Close tears the session down if it is
// still running.
type Session struct {
	player *Player
	id     string
	toc    *disc.TOC

	// track and proc are guarded by player.mu.
	track int
	proc  Process
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Track returns the track currently being streamed.
func (s *Session) Track() int {
	return s.currentTrack()
}

// Fingerprint returns the fingerprint of the disc being played.
func (s *Session) Fingerprint() string {
	return s.toc.Fingerprint()
}

func (s *Session) currentTrack() int {
	s.player.mu.Lock()
	defer s.player.mu.Unlock()
	return s.track
}

func (s *Session) currentProc() Process {
	s.player.mu.Lock()
	defer s.player.mu.Unlock()
	return s.proc
}

func (s *Session) shutdown(grace time.Duration) {
	s.currentProc().Terminate(grace)
}

// Read streams audio bytes. A clean end of track rolls over to the next
// track on the disc; the last track ends the stream with io.EOF. An
// extraction process dying mid-track surfaces as an error so the caller can
// log the truncation.
func (s *Session) Read(b []byte) (int, error) {
	for {
		proc := s.currentProc()
		n, err := proc.Output().Read(b)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			// Pipe closed out from under us during teardown.
			return 0, io.EOF
		}

		<-proc.Done()
		if proc.Terminated() {
			return 0, io.EOF
		}
		if procErr := proc.Err(); procErr != nil {
			return 0, fmt.Errorf("extraction failed on track %d: %w", proc.Track(), procErr)
		}
		if _, ok := s.player.advance(s, proc); !ok {
			return 0, io.EOF
		}
	}
}

// Close stops the session if it is still the running one.
func (s *Session) Close() error {
	s.player.StopSession(s)
	return nil
}
