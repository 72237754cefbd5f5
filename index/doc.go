// Package index provides lazy, single-flight initialization of the in-memory
// search index.
//
// The Loader owns an explicit state machine (idle, loading, ready, failed).
// Any number of callers may invoke EnsureReady concurrently; exactly one of
// them performs the disk load while the rest await its outcome. A failed load
// leaves the state retryable: the next caller becomes the new initializer.
// Once ready, the corpus is immutable for the process lifetime.
//
// Stage transitions are persisted to a progress.json snapshot so external
// observers can poll initialization progress, including across restarts.
// Snapshot writes are best-effort and never fail a load.
package index
