// Package ledger persists laughprep run history in SQLite: batch runs, the
// per-split summaries they produced, and checkpoints for resampled source
// files so unchanged inputs are not converted twice.
//
// Open applies WAL pragmas and creates the embedded schema on first use.
// AcquireLock guards the state directory against concurrent runs.
package ledger
