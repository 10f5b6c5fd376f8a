// Package main hosts the postbeat CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the daemon lifecycle, one-shot
// publishing runs, intake syncing, queue inspection, and configuration
// scaffolding. It centralizes configuration resolution and logging setup so
// subcommands can focus on user experience instead of wiring.
package main
