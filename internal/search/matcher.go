package search

import "strings"

// PageText is the extracted text of one page, identified by its 1-based
// page number.
type PageText struct {
	Page int
	Text string
}

// Match reports one term found on one page of one document.
type Match struct {
	Term Term
	Page int
}

// MatchPage checks every term against the text of a single page and
// returns the terms that appear on it. Terms built with a different
// case sensitivity than caseSensitive will not match correctly.
func MatchPage(terms []Term, page PageText, caseSensitive bool) []Match {
	normalized := Fold(page.Text, caseSensitive)
	digits := DigitKey(page.Text)

	var matches []Match
	for _, t := range terms {
		if t.Normalized != "" && strings.Contains(normalized, t.Normalized) {
			matches = append(matches, Match{Term: t, Page: page.Page})
			continue
		}
		if t.Digits != "" && digits != "" && strings.Contains(digits, t.Digits) {
			matches = append(matches, Match{Term: t, Page: page.Page})
		}
	}
	return matches
}

// Block is a contiguous run of pages sized for printing.
type Block struct {
	First int
	Last  int
}

// BlockFor returns the print block containing a page, given the block
// size and the total page count. Blocks are aligned to the start of the
// document: with size 20, pages 1-20 form the first block.
func BlockFor(page, size, total int) Block {
	if size < 1 {
		size = 1
	}
	idx := (page - 1) / size
	first := idx*size + 1
	last := first + size - 1
	if total > 0 && last > total {
		last = total
	}
	return Block{First: first, Last: last}
}

// BlocksForMatches collapses per-page matches into the distinct print
// blocks that contain at least one match, in ascending order.
func BlocksForMatches(matches []Match, size, total int) []Block {
	seen := make(map[int]bool)
	var blocks []Block
	for _, m := range matches {
		b := BlockFor(m.Page, size, total)
		if seen[b.First] {
			continue
		}
		seen[b.First] = true
		blocks = append(blocks, b)
	}
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && blocks[j].First < blocks[j-1].First; j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
	return blocks
}
