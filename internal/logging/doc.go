// Package logging wires log/slog with the toolkit's console and JSON
// handlers and re-exports the attribute constructors used across packages.
package logging
