// Command discd runs the audio CD streaming daemon. It watches the optical
// drive, exposes disc info and playback over HTTP, and supervises the
// extraction processes that read audio off the disc.
package main
