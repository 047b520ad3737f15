// Package runlog reads the persistent laughprep.log written by every run.
//
// Tail returns the last N matching lines with bounded memory and the byte
// offset to resume from; Follow polls from an offset until the context ends.
// Both can be narrowed to a single run ID, which the console and JSON log
// formats both record on every pipeline line.
package runlog
