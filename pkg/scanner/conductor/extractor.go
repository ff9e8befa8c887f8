package conductor

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/response"
	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

// TargetExtractor turns labeler spans into opinions. Each surviving span
// becomes an opinion whose target and placeholder expression cover the same
// terms; the expression category is the span label.
type TargetExtractor struct {
	labeler SequenceLabeler
	ctrl    *Controller
	dedupe  bool
	logger  *zap.Logger
}

// NewTargetExtractor wires labeler to the clear policy in opts.
func NewTargetExtractor(labeler SequenceLabeler, opts config.Options, logger *zap.Logger) *TargetExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TargetExtractor{
		labeler: labeler,
		ctrl:    NewController(opts.ClearFeatures, labeler, "labeler", logger),
		dedupe:  opts.Dedupe,
		logger:  logger,
	}
}

// Controller exposes the labeler's reset controller.
func (e *TargetExtractor) Controller() *Controller {
	return e.ctrl
}

// sentenceSpans labels one sentence and returns its disjoint spans.
func (e *TargetExtractor) sentenceSpans(sent document.Sentence, forms []string) ([]resolver.Span, error) {
	spans, err := e.labeler.GetSequences(forms)
	if err != nil {
		return nil, fmt.Errorf("conductor: labeling sentence %d: %w", sent.Number, err)
	}
	for _, s := range spans {
		if !s.Valid(len(forms)) {
			return nil, fmt.Errorf("conductor: sentence %d: labeler span %v outside [0,%d)", sent.Number, s, len(forms))
		}
	}
	return resolver.Resolve(spans), nil
}

// Annotate appends one opinion per labeled span. Existing opinions are kept;
// with dedupe enabled a span whose terms already form an opinion target is
// skipped. Spans over tokens without terms are reported in Report.Problems
// and the remaining spans are still processed. A labeler failure stops the
// pass; opinions from earlier sentences stay in place. The labeler's adaptive
// state is always cleared when Annotate returns.
func (e *TargetExtractor) Annotate(doc *document.Document) (Report, error) {
	defer e.ctrl.AfterDocument()

	var rep Report
	seen := make(map[string]bool)
	if e.dedupe {
		for _, op := range doc.Opinions {
			if op.Target != nil {
				seen[targetKey(op.Target.Span)] = true
			}
		}
	}

	for _, sent := range doc.Sentences() {
		forms := sent.Forms()
		e.ctrl.BeforeSentence(forms)

		spans, err := e.sentenceSpans(sent, forms)
		if err != nil {
			e.logger.Error("target extraction failed", zap.Int("sentence", sent.Number), zap.Error(err))
			return rep, err
		}

		ids := sent.IDs()
		for _, span := range spans {
			terms, err := doc.TermsForTokens(sent.Number, ids[span.Start:span.End])
			if err != nil {
				e.logger.Warn("span skipped", zap.Int("sentence", sent.Number), zap.Stringer("span", span), zap.Error(err))
				rep.Problems = append(rep.Problems, err)
				continue
			}
			termIDs := make([]string, len(terms))
			for i, t := range terms {
				termIDs[i] = t.ID
			}
			key := targetKey(termIDs)
			if e.dedupe && seen[key] {
				continue
			}
			seen[key] = true

			op := doc.NewOpinion(terms, terms)
			op.Expression.Category = span.Label
			rep.Created++
		}

		e.logger.Debug("sentence labeled",
			zap.Int("sentence", sent.Number),
			zap.Int("spans", len(spans)))
		e.ctrl.AfterSentence()
	}
	return rep, nil
}

// Spans labels every sentence and renders it in OpenNLP markup, one line per
// sentence. The document is not modified.
func (e *TargetExtractor) Spans(doc *document.Document) (string, error) {
	defer e.ctrl.AfterDocument()

	lines := make([]string, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		forms := sent.Forms()
		e.ctrl.BeforeSentence(forms)
		spans, err := e.sentenceSpans(sent, forms)
		if err != nil {
			return "", err
		}
		lines = append(lines, response.FormatOpenNLP(forms, spans))
		e.ctrl.AfterSentence()
	}
	return strings.Join(lines, "\n"), nil
}

func targetKey(termIDs []string) string {
	return strings.Join(termIDs, " ")
}
