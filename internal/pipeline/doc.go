// Package pipeline sequences a laughprep run.
//
// For each split it optionally resamples the source audio, regenerates the
// laughter and non-laughter clip directories, balances the non-laughter
// subset, finalizes the manifests, and writes the split report. Every run is
// bracketed by the state-directory lock and a ledger entry that records its
// seed, config fingerprint, per-split summaries, and outcome.
package pipeline
