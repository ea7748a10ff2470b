// Command discctl is the command-line client for the discd daemon. It talks
// to the HTTP API to inspect the inserted disc, start and stop playback,
// name discs, and eject the tray.
package main
