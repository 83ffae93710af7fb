// Package config loads, normalizes, and validates the toolkit's TOML
// configuration. Flags override file values at the CLI layer; this package
// only knows about the file and its defaults.
package config
