// Package services holds shared plumbing for remote service adapters: the
// error taxonomy used to classify failures (configuration, precondition,
// transient, timeout, not-found) and its wrapping helpers. Concrete adapters
// live in subpackages (meta, mediastore).
package services
