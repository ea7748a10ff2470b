// Package disc interfaces with the physical optical drive.
//
// It reads the audio table of contents through CDROM ioctls, derives a
// deterministic fingerprint from TOC geometry so the same disc is recognized
// across re-insertions, reports drive/tray status, and provides an ejector
// helper. Device quirks stay isolated here so higher-level playback code only
// sees typed errors and plain track geometry.
package disc
