// Package resolver removes overlapping candidate spans emitted by a sequence
// labeler so that each token belongs to at most one opinion target.
package resolver

import (
	"fmt"
	"sort"
)

// Span is a half-open [Start, End) range over a sentence's token indices.
type Span struct {
	Start int
	End   int
	Label string
	// Score is the labeler confidence; only meaningful when Scored is set.
	Score  float64
	Scored bool
}

// NewSpan returns an unscored span.
func NewSpan(start, end int, label string) Span {
	return Span{Start: start, End: end, Label: label}
}

// WithScore returns a copy of s carrying a confidence.
func (s Span) WithScore(score float64) Span {
	s.Score = score
	s.Scored = true
	return s
}

// Len is the number of tokens covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether s and o share a token.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Valid reports whether s is non-empty and fits a sentence of n tokens.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Label, s.Start, s.End)
}

// beats orders spans by retention priority: scored before unscored, higher
// score, longer span, leftmost start. End and label break the remaining ties
// so the order is total.
func beats(a, b Span) bool {
	if a.Scored != b.Scored {
		return a.Scored
	}
	if a.Scored && a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Label < b.Label
}

// Resolve returns a pairwise-disjoint subset of spans sorted by start.
// Spans are taken greedily in priority order; a span that overlaps an already
// retained one is dropped. The input slice is not modified.
func Resolve(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	ranked := make([]Span, len(spans))
	copy(ranked, spans)
	sort.SliceStable(ranked, func(i, j int) bool { return beats(ranked[i], ranked[j]) })

	kept := make([]Span, 0, len(ranked))
	for _, cand := range ranked {
		if cand.Len() <= 0 {
			continue
		}
		clash := false
		for _, k := range kept {
			if cand.Overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, cand)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
