// Package daemon wires the disc player together: it enforces single-instance
// execution with a lock file, serves the HTTP API, and watches the drive for
// media changes.
package daemon
