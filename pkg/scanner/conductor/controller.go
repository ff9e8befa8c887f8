package conductor

import (
	"go.uber.org/zap"

	"github.com/kittclouds/opinion/pkg/config"
)

// DocStartMarker is the first token of a sentence that opens a new document
// inside a concatenated corpus.
const DocStartMarker = "-DOCSTART-"

// Resettable is anything holding adaptive state.
type Resettable interface {
	ClearAdaptiveState()
}

// Controller issues adaptive-state resets to one tagger at the boundaries
// selected by the clear policy. A reset is only issued between tagger calls,
// never during one.
type Controller struct {
	policy config.ClearPolicy
	target Resettable
	name   string
	logger *zap.Logger
	resets int
}

// NewController creates a controller for target. name labels log lines.
func NewController(policy config.ClearPolicy, target Resettable, name string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{policy: policy, target: target, name: name, logger: logger}
}

// BeforeSentence resets when the policy is docstart and the sentence opens
// with DocStartMarker.
func (c *Controller) BeforeSentence(forms []string) bool {
	if c.policy == config.ClearOnDocStart && len(forms) > 0 && forms[0] == DocStartMarker {
		c.reset("docstart")
		return true
	}
	return false
}

// AfterSentence resets when the policy is every sentence.
func (c *Controller) AfterSentence() bool {
	if c.policy == config.ClearEverySentence {
		c.reset("sentence")
		return true
	}
	return false
}

// AfterDocument always resets so the tagger is clean for the next document.
func (c *Controller) AfterDocument() {
	c.reset("document")
}

// Resets returns how many resets were issued.
func (c *Controller) Resets() int {
	return c.resets
}

func (c *Controller) reset(boundary string) {
	c.target.ClearAdaptiveState()
	c.resets++
	c.logger.Debug("adaptive state cleared",
		zap.String("tagger", c.name),
		zap.String("boundary", boundary))
}
