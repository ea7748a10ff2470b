package player

// State describes the playback lifecycle.
type State string

const (
	// StateIdle means no session exists and the drive is free.
	StateIdle State = "idle"
	// StateStarting means an extraction process is being spawned.
	StateStarting State = "starting"
	// StateStreaming means a session is streaming audio to a client.
	StateStreaming State = "streaming"
	// StateStopping means the current session is being torn down.
	StateStopping State = "stopping"
)

func (s State) String() string {
	return string(s)
}

// Status is a point-in-time snapshot of the player.
type Status struct {
	State       State  `json:"state"`
	Track       int    `json:"track,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}
