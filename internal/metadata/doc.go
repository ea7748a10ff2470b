// Package metadata resolves display names for audio discs.
//
// A disc is identified by the geometry fingerprint of its table of contents.
// Names supplied by the user are persisted in a small SQLite library keyed by
// that fingerprint, so a disc re-inserted later comes back with the same
// artist, album, and track titles. Discs without stored names resolve to
// generic placeholders.
package metadata
