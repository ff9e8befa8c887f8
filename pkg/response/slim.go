// Package response renders annotated documents in compact forms for the CLI:
// a slim JSON opinion summary and OpenNLP inline span markup.
package response

import (
	"encoding/json"
	"strings"

	"github.com/kittclouds/opinion/pkg/document"
)

// SlimOpinion is one opinion flattened to surface text.
type SlimOpinion struct {
	ID       string `json:"id"`
	Sentence int    `json:"sentence,omitempty"`
	Target   string `json:"target,omitempty"`
	Category string `json:"category,omitempty"`
	Polarity string `json:"polarity,omitempty"`
}

// SlimSentiment is one dictionary hit.
type SlimSentiment struct {
	Term     string `json:"term"`
	Polarity string `json:"polarity"`
	Resource string `json:"resource"`
}

// SlimDocument is the summary emitted with --slim.
type SlimDocument struct {
	ID         string          `json:"id,omitempty"`
	Opinions   []SlimOpinion   `json:"opinions"`
	Sentiments []SlimSentiment `json:"sentiments,omitempty"`
	TimingUS   int64           `json:"timing_us"`
}

// FromDocument flattens doc.
func FromDocument(doc *document.Document) *SlimDocument {
	if doc == nil {
		return nil
	}
	sd := &SlimDocument{
		ID:       doc.ID,
		Opinions: make([]SlimOpinion, 0, len(doc.Opinions)),
	}

	for _, op := range doc.Opinions {
		so := SlimOpinion{ID: op.ID}
		if op.Target != nil {
			so.Target = surface(doc, op.Target.Span)
			so.Sentence, _ = doc.OpinionSentence(op)
		}
		if op.Expression != nil {
			so.Category = op.Expression.Category
			if label, ok := op.Expression.Polarity.Value(); ok {
				so.Polarity = label
			}
		}
		sd.Opinions = append(sd.Opinions, so)
	}

	for _, term := range doc.Terms {
		for _, s := range term.Sentiments {
			sd.Sentiments = append(sd.Sentiments, SlimSentiment{
				Term:     term.Form,
				Polarity: s.Polarity.Label(),
				Resource: s.Resource,
			})
		}
	}
	return sd
}

func surface(doc *document.Document, termIDs []string) string {
	forms := make([]string, 0, len(termIDs))
	for _, term := range doc.Resolve(termIDs) {
		forms = append(forms, term.Form)
	}
	return strings.Join(forms, " ")
}

// MarshalSlimResponse renders the slim summary of doc.
func MarshalSlimResponse(doc *document.Document, timingUS int64) ([]byte, error) {
	sd := FromDocument(doc)
	sd.TimingUS = timingUS
	return json.Marshal(sd)
}
