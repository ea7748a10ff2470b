package disc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FramesPerSecond is the CDDA sector rate: 75 frames make one second of audio.
const FramesPerSecond = 75

// TrackPosition reports the offset information for one audio track from the
// table of contents.
type TrackPosition struct {
	// Number is the 1-based physical track number.
	Number int
	// StartFrame is the LBA of the first frame of the track.
	StartFrame int32
	// LengthFrames is the total number of frames the track covers.
	LengthFrames int32
}

// DurationSeconds returns the track length in whole seconds, derived from TOC
// geometry rather than extracted audio.
func (t TrackPosition) DurationSeconds() int {
	if t.LengthFrames <= 0 {
		return 0
	}
	return int(t.LengthFrames) / FramesPerSecond
}

// TOC is an immutable snapshot of the disc's audio table of contents.
type TOC struct {
	Tracks []TrackPosition
}

// TrackCount returns the number of audio tracks.
func (t *TOC) TrackCount() int {
	if t == nil {
		return 0
	}
	return len(t.Tracks)
}

// Fingerprint derives a stable disc identifier from TOC geometry. The same
// disc re-inserted yields the same value without any external lookup.
func (t *TOC) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "cdda:%d", len(t.Tracks))
	for _, track := range t.Tracks {
		fmt.Fprintf(h, ":%d+%d", track.StartFrame, track.LengthFrames)
	}
	return hex.EncodeToString(h.Sum(nil))
}
