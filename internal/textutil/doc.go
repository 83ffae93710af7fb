// Package textutil provides small text helpers shared across the toolkit,
// primarily filename sanitization for feature-derived output names.
package textutil
