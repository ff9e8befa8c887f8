package classify

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/kittclouds/opinion/pkg/polarity"
)

// Default VADER settings.
const (
	DefaultThreshold = 0.05
	DefaultCarryOver = 0.2
)

// Vader labels text from the VADER compound score. With a non-zero carry-over
// the previous call's compound is blended into the current one, so that a
// short window inherits the tone of its context until the state is cleared.
type Vader struct {
	mu        sync.Mutex
	sia       *govader.SentimentIntensityAnalyzer
	threshold float64
	carry     float64

	prev    float64
	hasPrev bool
}

// VaderOption configures a Vader classifier.
type VaderOption func(*Vader)

// WithThreshold sets the compound magnitude needed for a non-neutral label.
func WithThreshold(t float64) VaderOption {
	return func(v *Vader) { v.threshold = t }
}

// WithCarryOver sets the weight of the previous compound, in [0, 1).
func WithCarryOver(w float64) VaderOption {
	return func(v *Vader) {
		if w < 0 {
			w = 0
		}
		if w >= 1 {
			w = 0.99
		}
		v.carry = w
	}
}

// NewVader creates a VADER classifier.
func NewVader(opts ...VaderOption) *Vader {
	v := &Vader{
		sia:       govader.NewSentimentIntensityAnalyzer(),
		threshold: DefaultThreshold,
		carry:     DefaultCarryOver,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Score returns the blended compound for tokens and updates the carried state.
func (v *Vader) Score(tokens []string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	var raw float64
	if len(tokens) > 0 {
		raw = v.sia.PolarityScores(strings.Join(tokens, " ")).Compound
	}
	score := raw
	if v.hasPrev && v.carry > 0 {
		score = (1-v.carry)*raw + v.carry*v.prev
	}
	v.prev, v.hasPrev = raw, true
	return score
}

// Classify maps the compound score to positive, negative or neutral.
func (v *Vader) Classify(tokens []string) (string, error) {
	score := v.Score(tokens)
	switch {
	case score >= v.threshold:
		return polarity.Positive, nil
	case score <= -v.threshold:
		return polarity.Negative, nil
	default:
		return polarity.Neutral, nil
	}
}

// ClearAdaptiveState drops the carried compound.
func (v *Vader) ClearAdaptiveState() {
	v.mu.Lock()
	v.prev, v.hasPrev = 0, false
	v.mu.Unlock()
}
