package search

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"worktoolkit/internal/services"
)

// Term is one search term with both its raw spelling and the normalized
// forms it is matched against.
type Term struct {
	Raw        string
	Normalized string
	Digits     string
}

// LoadTerms combines inline terms with terms read from an optional file,
// one per line. Blank lines and lines starting with '#' are ignored.
func LoadTerms(inline []string, file string, caseSensitive bool) ([]Term, error) {
	var raw []string
	raw = append(raw, inline...)

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "search", "load_terms", "open terms file", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "search", "load_terms", "read terms file", err)
		}
	}

	seen := make(map[string]bool, len(raw))
	terms := make([]Term, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		t := NewTerm(r, caseSensitive)
		if seen[t.Normalized] {
			continue
		}
		seen[t.Normalized] = true
		terms = append(terms, t)
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: search: load_terms: no search terms provided", services.ErrValidation)
	}
	return terms, nil
}

// NewTerm builds the normalized forms for one raw term.
func NewTerm(raw string, caseSensitive bool) Term {
	return Term{
		Raw:        raw,
		Normalized: Fold(raw, caseSensitive),
		Digits:     DigitKey(raw),
	}
}

// Normalize folds text for case-insensitive matching.
func Normalize(s string) string {
	return Fold(s, false)
}

// Fold prepares text for matching: NFKC normalization and collapsed
// whitespace, with lower casing unless caseSensitive is set.
func Fold(s string, caseSensitive bool) string {
	s = norm.NFKC.String(s)
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

// DigitKey reduces a string to its digit runs with separators removed,
// so "12.345-6" and "123456" compare equal. Returns "" when the string
// contains no digits.
func DigitKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if len(key) < 4 {
		// Short digit runs match too much page text to be useful.
		return ""
	}
	return key
}
