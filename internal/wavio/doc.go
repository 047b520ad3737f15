// Package wavio loads PCM WAV recordings into memory and writes frame ranges
// of them back out as standalone clips.
package wavio
