package feature

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Filter selects which runes survive a filtering pass.
type Filter string

const (
	FilterDigits  Filter = "digits"
	FilterLetters Filter = "letters"
	FilterAlnum   Filter = "alnum"
	FilterAll     Filter = "all"
)

// Basis selects the string against which the 1-based index range is applied.
type Basis string

const (
	BasisOriginal Basis = "original"
	BasisFiltered Basis = "filtered"
)

// ErrRange reports that a base name's indexing basis is too short to cover
// the configured range. Callers treat it as "skip this source".
var ErrRange = errors.New("index range exceeds basis length")

// Config fixes the extraction parameters for a whole run.
type Config struct {
	P1          int
	P2          int
	Basis       Basis
	IndexFilter Filter // applied to build the basis when Basis is BasisFiltered
	EmitScope   Filter // applied to the extracted slice
}

// Validate checks range and enum values.
func (c Config) Validate() error {
	if c.P1 < 1 || c.P2 < 1 {
		return errors.New("p1 and p2 must be positive 1-based positions")
	}
	if c.P2 < c.P1 {
		return errors.New("p2 must be >= p1 (inclusive range)")
	}
	switch c.Basis {
	case BasisOriginal, BasisFiltered:
	default:
		return fmt.Errorf("index basis must be original or filtered (got %q)", string(c.Basis))
	}
	for name, f := range map[string]Filter{"index filter": c.IndexFilter, "emit scope": c.EmitScope} {
		switch f {
		case FilterDigits, FilterLetters, FilterAlnum, FilterAll:
		default:
			return fmt.Errorf("%s must be one of digits, letters, alnum, all (got %q)", name, string(f))
		}
	}
	return nil
}

// ParseFilter converts a flag value to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterDigits:
		return FilterDigits, nil
	case FilterLetters:
		return FilterLetters, nil
	case FilterAlnum:
		return FilterAlnum, nil
	case FilterAll:
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want digits, letters, alnum, or all)", s)
	}
}

// ParseBasis converts a flag value to a Basis.
func ParseBasis(s string) (Basis, error) {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case BasisOriginal:
		return BasisOriginal, nil
	case BasisFiltered:
		return BasisFiltered, nil
	default:
		return "", fmt.Errorf("unknown index basis %q (want original or filtered)", s)
	}
}

// Apply returns s reduced to the runes the filter admits.
func Apply(s string, f Filter) string {
	if f == FilterAll {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch f {
		case FilterDigits:
			if unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		case FilterLetters:
			if unicode.IsLetter(r) {
				b.WriteRune(r)
			}
		case FilterAlnum:
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Extract derives the feature key for a document's base name. It is a pure
// function of its inputs. ErrRange is returned when the basis is shorter
// than P2; if the emit-scope filter empties the slice, the unfiltered slice
// is used so every in-range source still gets a non-empty key.
func (c Config) Extract(stem string) (string, error) {
	basis := stem
	if c.Basis == BasisFiltered {
		basis = Apply(stem, c.IndexFilter)
	}
	runes := []rune(basis)
	if len(runes) < c.P2 {
		return "", fmt.Errorf("%w: basis %q has %d characters, range needs %d", ErrRange, basis, len(runes), c.P2)
	}
	slice := string(runes[c.P1-1 : c.P2])
	key := Apply(slice, c.EmitScope)
	if key == "" {
		key = slice
	}
	return key, nil
}
