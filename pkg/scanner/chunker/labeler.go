package chunker

import (
	"strings"

	"github.com/kittclouds/opinion/pkg/scanner/discovery"
	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

// Label is the span type emitted by the chunker.
const Label = "OTE"

// Cue confidences. A run with both cues outranks a run with one, which
// outranks a run labelled only because the registry promoted it.
const (
	scoreBothCues = 0.9
	scoreOneCue   = 0.7
	scorePromoted = 0.5
)

// Labeler finds noun runs that look like opinion targets: a run preceded by
// a determiner or adjective, or followed by an auxiliary ("the battery is").
// Every run is recorded in the registry; a run promoted there is labelled
// even without cues. The registry is the adaptive state.
type Labeler struct {
	tagger   *Tagger
	registry *discovery.Registry
}

// New creates a Labeler over registry.
func New(registry *discovery.Registry) *Labeler {
	return &Labeler{tagger: NewTagger(), registry: registry}
}

// Tagger exposes the POS tagger for lexicon overrides.
func (l *Labeler) Tagger() *Tagger {
	return l.tagger
}

// Registry returns the adaptive candidate registry.
func (l *Labeler) Registry() *discovery.Registry {
	return l.registry
}

// GetSequences returns one scored span per candidate noun run.
func (l *Labeler) GetSequences(tokens []string) ([]resolver.Span, error) {
	tags := l.tagger.Tag(tokens)

	var spans []resolver.Span
	var observed []string
	for i := 0; i < len(tags); {
		if !tags[i].IsNominal() {
			i++
			continue
		}
		start := i
		for i < len(tags) && tags[i].IsNominal() {
			i++
		}
		end := i

		phrase := strings.Join(tokens[start:end], " ")
		if l.registry.IsStopword(phrase) {
			continue
		}
		observed = append(observed, phrase)

		cues := 0
		if start > 0 && (tags[start-1] == Determiner || tags[start-1] == Adjective) {
			cues++
		}
		if end < len(tags) && (tags[end] == Auxiliary || tags[end] == Modal) {
			cues++
		}

		var score float64
		switch {
		case cues == 2:
			score = scoreBothCues
		case cues == 1:
			score = scoreOneCue
		case l.registry.Promoted(phrase):
			score = scorePromoted
		default:
			continue
		}
		spans = append(spans, resolver.NewSpan(start, end, Label).WithScore(score))
	}

	// Mentions count only after the sentence is labelled so that promotion
	// affects later mentions, never the promoting one.
	for _, phrase := range observed {
		l.registry.Observe(phrase)
	}
	return spans, nil
}

// ClearAdaptiveState forgets every observed candidate.
func (l *Labeler) ClearAdaptiveState() {
	l.registry.Reset()
}
