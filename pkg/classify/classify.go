// Package classify provides the document and window classifiers used by the
// polarity pass. Each classifier carries adaptive state across calls and must
// not be shared between documents processed concurrently.
package classify

import (
	"strings"

	"github.com/kittclouds/opinion/pkg/config"
)

// Classifier labels a token sequence with a polarity.
type Classifier interface {
	Classify(tokens []string) (string, error)
	ClearAdaptiveState()
}

// New builds the classifier named by the classifier option: the built-in
// VADER classifier or a maxent model path.
func New(name string) (Classifier, error) {
	if name == "" || strings.EqualFold(name, config.ClassifierVader) {
		return NewVader(), nil
	}
	return LoadMaxent(name)
}
