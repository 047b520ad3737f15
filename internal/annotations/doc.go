// Package annotations parses the master laughter label file into per-recording
// laughter intervals expressed in sample indices.
package annotations
