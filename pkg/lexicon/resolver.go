package lexicon

import (
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/polarity"
)

// PolarityResolver applies a dictionary to terms, trying the surface form
// before the lemma.
type PolarityResolver struct {
	tagger Tagger
}

// NewPolarityResolver wraps tagger.
func NewPolarityResolver(tagger Tagger) *PolarityResolver {
	return &PolarityResolver{tagger: tagger}
}

// Resource is the provenance tag written on sentiments.
func (r *PolarityResolver) Resource() string {
	return r.tagger.Name()
}

// Lookup returns the polarity of term's surface form, falling back to its
// lemma. None means neither is in the dictionary.
func (r *PolarityResolver) Lookup(term *document.Term) polarity.Polarity {
	if p := r.tagger.Lookup(term.Form); !p.IsNone() {
		return p
	}
	if term.Lemma == "" || term.Lemma == term.Form {
		return polarity.None
	}
	return r.tagger.Lookup(term.Lemma)
}

// Annotate attaches the looked-up polarity to term. Terms without a polarity
// are left untouched.
func (r *PolarityResolver) Annotate(term *document.Term) bool {
	p := r.Lookup(term)
	if p.IsNone() {
		return false
	}
	term.SetSentiment(p, r.tagger.Name())
	return true
}

// AnnotateDocument annotates every term of doc and returns how many received
// a sentiment.
func (r *PolarityResolver) AnnotateDocument(doc *document.Document) int {
	n := 0
	for _, term := range doc.Terms {
		if r.Annotate(term) {
			n++
		}
	}
	return n
}
