// Package resample drives the external sample-rate converter that brings a
// split's source recordings to the pipeline's rate and bit depth. Completed
// files are checkpointed in the run ledger so re-runs only convert new or
// changed inputs.
package resample
