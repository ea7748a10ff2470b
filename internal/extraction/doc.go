// Package extraction supervises the external audio extraction subprocess.
//
// It mediates access to the cdparanoia CLI: one process per track, exclusively
// owned by its playback session. The supervisor normalizes command invocation,
// forwards tool diagnostics into debug logs, and guarantees that terminate
// escalates from SIGTERM to SIGKILL within a bounded grace period so a stuck
// process can never poison later sessions. Every started process is reaped
// exactly once.
//
// Prefer this package over ad-hoc exec.Command usage when touching the drive
// so ownership and teardown stay consistent.
package extraction
