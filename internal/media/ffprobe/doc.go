// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Publishing eligibility depends on video duration, so the package centers
// on duration extraction: Inspect runs the binary and parses its JSON, and
// DurationOf collapses any failure into a zero duration that callers treat
// as unknown.
package ffprobe
