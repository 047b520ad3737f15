// Package preflight provides readiness checks for the external programs and
// filesystem paths a laughprep run depends on.
//
// These checks run in two contexts:
//   - "laughprep prepare" calls RunAll before touching any output and refuses
//     to start when a check fails.
//   - "laughprep check" prints every result so operators can fix the
//     environment up front.
//
// The resampler check is skipped when resampling is disabled.
package preflight
