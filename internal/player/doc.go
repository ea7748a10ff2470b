// Package player owns playback state for the disc drive.
//
// At most one playback session exists at a time. Starting a track tears down
// any session already streaming, and a session's extraction process is always
// reaped before the drive is considered free again. The player also answers
// disc info requests, caching the table of contents briefly so polling
// clients do not hammer the drive.
package player
