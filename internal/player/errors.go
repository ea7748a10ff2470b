package player

import "errors"

// ErrTrackOutOfRange indicates a requested track number is not on the
// inserted disc. The running session, if any, is left untouched.
var ErrTrackOutOfRange = errors.New("track not on disc")
