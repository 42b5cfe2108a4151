// Package logtail reads the newest entries of the client log for the
// in-app log overlay.
//
// The log is written by package logging as one zap JSON object per line.
// Tail keeps only the last N lines in a ring buffer, so memory stays bounded
// however large the file grows, and decodes each line with gjson. Lines that
// are not JSON (a panic trace, a hand edit) are kept verbatim.
//
//	entries, err := logtail.Tail(cfg.LogPath(), 200)
package logtail
