// Package config loads, normalizes, and validates laughprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LAUGHPREP_SRC_TOOL. The Config type centralizes the audio format, split
// list, external tool commands, and state locations, and Layout derives the
// per-split directory names every stage agrees on.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
