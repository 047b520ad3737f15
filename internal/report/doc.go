// Package report summarizes what a split produced: segment counts and
// duration statistics for kept laughter, the non-laughter pool, and the
// balanced subset. Reports are written as report.yaml beside the manifests.
package report
