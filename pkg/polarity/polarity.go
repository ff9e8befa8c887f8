// Package polarity defines the polarity label attached to opinion expressions
// and term sentiments.
//
// A Polarity is either None or a concrete label. Labels are opaque strings so
// that domain tag sets ("positive", "negative", "neutral", "O", ...) pass
// through untouched; absence is never encoded as a magic label.
package polarity

import (
	"encoding/json"
	"strings"
)

// Common labels produced by the bundled classifiers.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Polarity is None or Value(label).
type Polarity struct {
	label string
	set   bool
}

// None is the absent polarity.
var None = Polarity{}

// Of returns Value(label). An empty or blank label yields None.
func Of(label string) Polarity {
	if strings.TrimSpace(label) == "" {
		return None
	}
	return Polarity{label: label, set: true}
}

// Value returns the label and whether one is set.
func (p Polarity) Value() (string, bool) {
	return p.label, p.set
}

// IsNone reports whether no label is set.
func (p Polarity) IsNone() bool {
	return !p.set
}

// Label returns the label, or "" for None.
func (p Polarity) Label() string {
	return p.label
}

// Equal compares two polarities.
func (p Polarity) Equal(o Polarity) bool {
	return p.set == o.set && p.label == o.label
}

func (p Polarity) String() string {
	if !p.set {
		return "<none>"
	}
	return p.label
}

// MarshalJSON encodes None as null.
func (p Polarity) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.label)
}

// UnmarshalJSON accepts null, "" or a label string.
func (p *Polarity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Of(s)
	return nil
}
