package metadata

// Track describes one playable track on a resolved disc.
type Track struct {
	Number          int    `json:"number"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Disc is the resolved view of an inserted disc: stored names when the
// library knows the fingerprint, placeholders otherwise.
type Disc struct {
	Fingerprint string  `json:"fingerprint"`
	Artist      string  `json:"artist"`
	Title       string  `json:"title"`
	Named       bool    `json:"named"`
	Tracks      []Track `json:"tracks"`
}

// TotalSeconds returns the summed duration of all tracks.
func (d *Disc) TotalSeconds() int {
	total := 0
	for _, track := range d.Tracks {
		total += track.DurationSeconds
	}
	return total
}

// Names is the persisted naming record for one disc fingerprint. Track titles
// are keyed by 1-based track number; missing entries fall back to placeholders
// at resolve time.
type Names struct {
	Fingerprint string
	Artist      string
	Title       string
	Tracks      map[int]string
}
