// Package workflow drives one end-to-end publish run.
//
// The Runner syncs the intake directory into the store, selects the oldest
// pending post, hands it to the publisher, advances the scheduler state when
// at least one platform succeeded, and emits notifications for completion,
// partial failure, and an empty queue. The scheduler and CLI both call into
// it so manual and timed runs share identical semantics.
package workflow
