package conductor

import (
	"errors"

	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

// SequenceLabeler proposes typed target spans over a sentence's tokens.
// Implementations may keep adaptive state between calls.
type SequenceLabeler interface {
	GetSequences(tokens []string) ([]resolver.Span, error)
	ClearAdaptiveState()
}

// Classifier assigns a polarity label to a token sequence. Implementations
// may keep adaptive state between calls.
type Classifier interface {
	Classify(tokens []string) (string, error)
	ClearAdaptiveState()
}

// Report summarises one pass over a document.
type Report struct {
	// Opinions created by the pass.
	Created int
	// Terms that received a dictionary sentiment.
	Sentiments int
	// Classifier calls, and how many of them used a window.
	Classified int
	Windows    int
	// Problems are per-opinion failures (mapping and window errors) that did
	// not stop the pass.
	Problems []error
}

// Err joins the per-opinion problems, or returns nil.
func (r Report) Err() error {
	return errors.Join(r.Problems...)
}

func (r *Report) merge(o Report) {
	r.Created += o.Created
	r.Sentiments += o.Sentiments
	r.Classified += o.Classified
	r.Windows += o.Windows
	r.Problems = append(r.Problems, o.Problems...)
}
