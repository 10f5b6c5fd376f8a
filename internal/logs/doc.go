// Package logs provides bounded log file tailing for the CLI.
//
// It supports negative offsets for "tail last N lines" reads and a follow
// mode that polls for new lines, powering `postbeat logs --follow`. Callers
// supply context deadlines so polling shuts down cleanly when the CLI exits.
package logs
