// Package store persists posts, per-platform publish records, and scheduler
// state in SQLite.
//
// The Store manages the database connection, schema initialization, and the
// queries the publish orchestrator and intake selector rely on. Publish
// records are keyed UNIQUE(post_id, platform) with last-write-wins upserts so
// a retried attempt overwrites the previous outcome rather than appending
// history. The scheduler_state singleton row carries the day-scoped posting
// counter; the counter resets whenever the stored date differs from the
// current date.
//
// Schema changes bump schemaVersion in schema.go; existing databases must be
// deleted to adopt the new schema.
package store
