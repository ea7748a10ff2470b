// Package config loads, validates, and normalizes discd configuration.
//
// Configuration lives in a TOML file (default ~/.config/discd/config.toml)
// decoded over compiled-in defaults, so a missing file still yields a usable
// configuration. Paths are tilde-expanded and validation runs before the
// config is handed to the rest of the daemon.
package config
