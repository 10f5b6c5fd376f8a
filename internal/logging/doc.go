// Package logging builds the slog loggers used across postbeat.
//
// Handlers come in two flavors: a console handler for interactive use and a
// JSON handler for machine consumption. Output fans out to stdout and the
// daemon log file. Attribute helpers and standardized field keys keep log
// records consistent between the daemon, the orchestrator, and the CLI.
package logging
