// Package failures defines the sentinel error markers laughprep stages use to
// classify fatal conditions, plus Wrap for attaching stage and operation
// context while keeping errors.Is working on both the marker and the cause.
package failures
