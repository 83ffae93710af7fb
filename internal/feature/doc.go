// Package feature derives grouping keys from document base names using a
// 1-based inclusive character range over a configurable indexing basis.
package feature
