package feature_test

import (
	"errors"
	"testing"

	"worktoolkit/internal/feature"
)

func baseConfig() feature.Config {
	return feature.Config{
		P1:          1,
		P2:          1,
		Basis:       feature.BasisOriginal,
		IndexFilter: feature.FilterDigits,
		EmitScope:   feature.FilterAll,
	}
}

func TestExtractFirstLetterGroups(t *testing.T) {
	cfg := baseConfig()
	cfg.EmitScope = feature.FilterLetters

	for stem, want := range map[string]string{"A1": "A", "A2": "A", "B1": "B"} {
		got, err := cfg.Extract(stem)
		if err != nil {
			t.Fatalf("Extract(%q): %v", stem, err)
		}
		if got != want {
			t.Fatalf("Extract(%q) = %q, want %q", stem, got, want)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	cfg := feature.Config{P1: 3, P2: 5, Basis: feature.BasisFiltered, IndexFilter: feature.FilterDigits, EmitScope: feature.FilterAll}
	first, err := cfg.Extract("doc-12345-x")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := cfg.Extract("doc-12345-x")
		if err != nil || again != first {
			t.Fatalf("iteration %d: got %q, %v; want %q", i, again, err, first)
		}
	}
	if first != "345" {
		t.Fatalf("Extract = %q, want %q", first, "345")
	}
}

func TestExtractRangeError(t *testing.T) {
	cfg := baseConfig()
	cfg.P2 = 2
	_, err := cfg.Extract("7")
	if !errors.Is(err, feature.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestExtractRangeCountsFilteredBasis(t *testing.T) {
	cfg := feature.Config{P1: 1, P2: 3, Basis: feature.BasisFiltered, IndexFilter: feature.FilterDigits, EmitScope: feature.FilterAll}
	// "a1b2" filters to "12": too short for p2=3 even though the stem is longer.
	if _, err := cfg.Extract("a1b2"); !errors.Is(err, feature.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestExtractEmitScopeFallback(t *testing.T) {
	cfg := feature.Config{P1: 1, P2: 2, Basis: feature.BasisOriginal, IndexFilter: feature.FilterAll, EmitScope: feature.FilterDigits}
	// Slice "ab" has no digits; the unfiltered slice must be emitted.
	got, err := cfg.Extract("abc")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "ab" {
		t.Fatalf("Extract = %q, want fallback %q", got, "ab")
	}
}

func TestExtractUsesRunesNotBytes(t *testing.T) {
	cfg := feature.Config{P1: 1, P2: 2, Basis: feature.BasisOriginal, IndexFilter: feature.FilterAll, EmitScope: feature.FilterAll}
	got, err := cfg.Extract("ñu-1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "ñu" {
		t.Fatalf("Extract = %q, want %q", got, "ñu")
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []feature.Config{
		{P1: 0, P2: 1, Basis: feature.BasisOriginal, IndexFilter: feature.FilterAll, EmitScope: feature.FilterAll},
		{P1: 2, P2: 1, Basis: feature.BasisOriginal, IndexFilter: feature.FilterAll, EmitScope: feature.FilterAll},
		{P1: 1, P2: 1, Basis: "weird", IndexFilter: feature.FilterAll, EmitScope: feature.FilterAll},
		{P1: 1, P2: 1, Basis: feature.BasisOriginal, IndexFilter: "vowels", EmitScope: feature.FilterAll},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	good := baseConfig()
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestApplyFilters(t *testing.T) {
	in := "a1-b2_c3"
	if got := feature.Apply(in, feature.FilterDigits); got != "123" {
		t.Fatalf("digits = %q", got)
	}
	if got := feature.Apply(in, feature.FilterLetters); got != "abc" {
		t.Fatalf("letters = %q", got)
	}
	if got := feature.Apply(in, feature.FilterAlnum); got != "a1b2c3" {
		t.Fatalf("alnum = %q", got)
	}
	if got := feature.Apply(in, feature.FilterAll); got != in {
		t.Fatalf("all = %q", got)
	}
}
