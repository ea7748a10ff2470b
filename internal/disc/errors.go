package disc

import "errors"

var (
	// ErrNoDisc indicates the drive has no readable audio disc loaded: tray
	// open, no medium, drive not ready, or a TOC query that timed out.
	ErrNoDisc = errors.New("no disc loaded")

	// ErrDriveIO indicates a lower-level device fault while talking to the
	// drive. Callers should surface it rather than retry; a jammed optical
	// read tends to stay jammed.
	ErrDriveIO = errors.New("drive io error")
)
