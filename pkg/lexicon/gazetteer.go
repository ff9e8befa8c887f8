package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

// DefaultCategory labels gazetteer entries that carry no category column.
const DefaultCategory = "OTE"

// Gazetteer labels known aspect terms in a token sequence with a single
// Aho-Corasick automaton over folded patterns. It keeps no adaptive state.
type Gazetteer struct {
	name       string
	ac         *ahocorasick.Automaton
	patterns   []string
	categories []string
}

// NewGazetteer compiles term to category pairs. Terms are folded, so matching
// ignores case. When two terms fold to the same pattern, the later category in
// sorted term order wins.
func NewGazetteer(name string, entries map[string]string) (*Gazetteer, error) {
	g := &Gazetteer{name: name}
	index := make(map[string]int)
	for _, e := range NewDictionary(name, entries).Entries() {
		key := Fold(e.Term)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			g.categories[i] = e.Label
			continue
		}
		index[key] = len(g.patterns)
		g.patterns = append(g.patterns, key)
		g.categories = append(g.categories, e.Label)
	}
	if len(g.patterns) == 0 {
		return g, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(g.patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("lexicon: failed to build gazetteer %s: %w", name, err)
	}
	g.ac = automaton
	return g, nil
}

// LoadGazetteer reads "term<TAB>category" lines; a missing category becomes
// DefaultCategory.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	entries := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		term, category, _ := strings.Cut(line, "\t")
		category = strings.TrimSpace(category)
		if category == "" {
			category = DefaultCategory
		}
		entries[strings.TrimSpace(term)] = category
	}
	g, err := NewGazetteer(ResourceName(path), entries)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	return g, nil
}

// Name returns the resource name.
func (g *Gazetteer) Name() string {
	return g.name
}

// Len returns the number of distinct patterns.
func (g *Gazetteer) Len() int {
	return len(g.patterns)
}

// GetSequences returns every gazetteer match aligned to whole tokens. Matches
// may overlap; callers resolve overlaps.
func (g *Gazetteer) GetSequences(tokens []string) ([]resolver.Span, error) {
	if g.ac == nil || len(tokens) == 0 {
		return nil, nil
	}

	// Haystack is the folded tokens joined by single spaces. starts/ends map
	// byte offsets of token boundaries back to token positions.
	var hay strings.Builder
	starts := make(map[int]int, len(tokens))
	ends := make(map[int]int, len(tokens))
	for i, tok := range tokens {
		if i > 0 {
			hay.WriteByte(' ')
		}
		f := Fold(tok)
		if f == "" {
			// keep positions aligned; NUL never occurs in a pattern
			f = "\x00"
		}
		f = strings.ReplaceAll(f, " ", "\x00")
		starts[hay.Len()] = i
		hay.WriteString(f)
		ends[hay.Len()] = i + 1
	}

	var spans []resolver.Span
	for _, m := range g.ac.FindAllOverlapping([]byte(hay.String())) {
		start, ok1 := starts[m.Start]
		end, ok2 := ends[m.End]
		if !ok1 || !ok2 || start >= end {
			continue
		}
		spans = append(spans, resolver.NewSpan(start, end, g.categories[m.PatternID]))
	}
	return spans, nil
}

// ClearAdaptiveState is a no-op.
func (g *Gazetteer) ClearAdaptiveState() {}
