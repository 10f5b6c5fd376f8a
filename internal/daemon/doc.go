// Package daemon coordinates the long-running postbeat process.
//
// It wires configuration, the post store, and the scheduler into a single
// lifecycle with flock-based locking to prevent multiple instances. Shutdown
// waits for an in-flight publish run to finish before releasing the lock.
//
// Keep lifecycle logic here: scheduling decisions live in the scheduler
// package and publish semantics in the workflow runner.
package daemon
