// Package main hosts the laughprep CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration lazily, opens the run ledger,
// and hands work to the pipeline runner. Commands that only scaffold or sort
// files skip configuration loading entirely.
package main
