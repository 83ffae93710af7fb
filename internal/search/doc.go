// Package search finds terms inside PDF documents and maps the hits to
// printable page blocks.
package search
