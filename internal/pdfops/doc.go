// Package pdfops implements the document side of the unification pipeline:
// merging a group's sources into one PDF, recompressing oversized embedded
// images, and structurally optimizing the result before serialization.
// All document manipulation goes through pdfcpu.
package pdfops
