// Package conductor orchestrates opinion annotation. It wires the target
// labeler, the span resolver, the dictionary and the classifier into the two
// document passes, and brackets both with adaptive-state resets.
//
// A Conductor owns stateful taggers and serves one document at a time. Use
// one Conductor per goroutine (see package pool).
package conductor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kittclouds/opinion/pkg/classify"
	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/lexicon"
	"github.com/kittclouds/opinion/pkg/scanner/chunker"
	"github.com/kittclouds/opinion/pkg/scanner/discovery"
)

// Conductor runs the annotation passes over documents.
type Conductor struct {
	opts       config.Options
	logger     *zap.Logger
	labeler    SequenceLabeler
	classifier Classifier
	dictionary lexicon.Tagger

	extractor *TargetExtractor
	assigner  *PolarityAssigner
}

// Option customises a Conductor.
type Option func(*Conductor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Conductor) { c.logger = l }
}

// WithLabeler replaces the labeler named by the targets option.
func WithLabeler(l SequenceLabeler) Option {
	return func(c *Conductor) { c.labeler = l }
}

// WithClassifier replaces the classifier named by the classifier option.
func WithClassifier(cl Classifier) Option {
	return func(c *Conductor) { c.classifier = cl }
}

// WithDictionary supplies an already loaded dictionary, which may be shared
// between conductors. It takes effect only when the dictionary option is set.
func WithDictionary(t lexicon.Tagger) Option {
	return func(c *Conductor) { c.dictionary = t }
}

// New builds a Conductor. Resources named in opts and not supplied through
// options are loaded here; a missing or unreadable one fails construction
// before any document is touched.
func New(opts config.Options, options ...Option) (*Conductor, error) {
	c := &Conductor{opts: opts, logger: zap.NewNop()}
	for _, opt := range options {
		opt(c)
	}

	if c.labeler == nil {
		l, err := NewLabeler(opts)
		if err != nil {
			return nil, err
		}
		c.labeler = l
	}
	if c.classifier == nil {
		cl, err := classify.New(opts.Classifier)
		if err != nil {
			return nil, err
		}
		c.classifier = cl
	}

	var pr *lexicon.PolarityResolver
	if opts.DictionaryEnabled() {
		if c.dictionary == nil {
			d, err := lexicon.LoadDictionary(opts.Dictionary)
			if err != nil {
				return nil, err
			}
			c.dictionary = d
		}
		pr = lexicon.NewPolarityResolver(c.dictionary)
	}

	c.extractor = NewTargetExtractor(c.labeler, opts, c.logger.Named("ote"))
	c.assigner = NewPolarityAssigner(c.classifier, pr, opts, c.logger.Named("pol"))
	return c, nil
}

// FromProperties parses p and builds a Conductor.
func FromProperties(p config.Properties, options ...Option) (*Conductor, error) {
	opts, err := config.Parse(p)
	if err != nil {
		return nil, err
	}
	return New(opts, options...)
}

// NewLabeler builds the labeler named by the targets option: the heuristic
// chunker or a gazetteer file.
func NewLabeler(opts config.Options) (SequenceLabeler, error) {
	if opts.Targets == "" || strings.EqualFold(opts.Targets, config.TargetsHeuristic) {
		return chunker.New(discovery.NewRegistry(opts.Promotion, opts.Language)), nil
	}
	return lexicon.LoadGazetteer(opts.Targets)
}

// Options returns the options the Conductor was built with.
func (c *Conductor) Options() config.Options {
	return c.opts
}

// Dictionary returns the dictionary in use, or nil.
func (c *Conductor) Dictionary() lexicon.Tagger {
	return c.dictionary
}

// ExtractTargets runs the target extraction pass.
func (c *Conductor) ExtractTargets(doc *document.Document) (Report, error) {
	return c.extractor.Annotate(doc)
}

// AssignPolarity runs the polarity pass.
func (c *Conductor) AssignPolarity(doc *document.Document) (Report, error) {
	return c.assigner.Annotate(doc)
}

// Annotate runs target extraction then polarity assignment.
func (c *Conductor) Annotate(doc *document.Document) (Report, error) {
	rep, err := c.ExtractTargets(doc)
	if err != nil {
		return rep, err
	}
	pol, err := c.AssignPolarity(doc)
	rep.merge(pol)
	if err != nil {
		return rep, err
	}
	c.logger.Debug("document annotated",
		zap.String("doc", doc.ID),
		zap.Int("opinions", len(doc.Opinions)),
		zap.Int("problems", len(rep.Problems)))
	return rep, nil
}

// Spans renders labeler output in OpenNLP markup.
func (c *Conductor) Spans(doc *document.Document) (string, error) {
	return c.extractor.Spans(doc)
}

// Reset clears the adaptive state of both taggers.
func (c *Conductor) Reset() {
	c.labeler.ClearAdaptiveState()
	c.classifier.ClearAdaptiveState()
}
