package conductor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/lexicon"
	"github.com/kittclouds/opinion/pkg/polarity"
	"github.com/kittclouds/opinion/pkg/scanner/window"
)

// PolarityAssigner sets opinion polarities.
//
// The dictionary pass, when configured, runs once over every term of the
// document. Then, per sentence:
//   - if the document had no opinions, the whole sentence is classified and
//     a sentence-spanning opinion is created;
//   - a sentence holding exactly one opinion target is classified whole;
//   - a sentence holding several targets is classified once per target over
//     the window around it;
//   - other sentences are skipped.
type PolarityAssigner struct {
	classifier Classifier
	dictionary *lexicon.PolarityResolver
	ctrl       *Controller
	windowMin  int
	windowMax  int
	logger     *zap.Logger
}

// NewPolarityAssigner wires classifier to the options. dictionary may be nil.
func NewPolarityAssigner(classifier Classifier, dictionary *lexicon.PolarityResolver, opts config.Options, logger *zap.Logger) *PolarityAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolarityAssigner{
		classifier: classifier,
		dictionary: dictionary,
		ctrl:       NewController(opts.ClearFeatures, classifier, "classifier", logger),
		windowMin:  opts.WindowMin,
		windowMax:  opts.WindowMax,
		logger:     logger,
	}
}

// Controller exposes the classifier's reset controller.
func (a *PolarityAssigner) Controller() *Controller {
	return a.ctrl
}

// Annotate runs the polarity pass. Window errors are reported per opinion in
// Report.Problems; a classifier failure stops the pass and leaves earlier
// sentences annotated. The classifier's adaptive state is always cleared when
// Annotate returns.
func (a *PolarityAssigner) Annotate(doc *document.Document) (Report, error) {
	defer a.ctrl.AfterDocument()

	var rep Report
	if a.dictionary != nil {
		rep.Sentiments = a.dictionary.AnnotateDocument(doc)
		a.logger.Debug("dictionary applied",
			zap.String("resource", a.dictionary.Resource()),
			zap.Int("terms", rep.Sentiments))
	}

	hasOpinions := len(doc.Opinions) > 0
	for _, sent := range doc.Sentences() {
		forms := sent.Forms()
		a.ctrl.BeforeSentence(forms)

		var err error
		if hasOpinions {
			err = a.existing(doc, sent, forms, &rep)
		} else {
			err = a.sentenceOpinion(doc, sent, forms, &rep)
		}
		if err != nil {
			a.logger.Error("polarity assignment failed", zap.Int("sentence", sent.Number), zap.Error(err))
			return rep, err
		}
		a.ctrl.AfterSentence()
	}
	return rep, nil
}

func (a *PolarityAssigner) classify(sentence int, tokens []string) (polarity.Polarity, error) {
	label, err := a.classifier.Classify(tokens)
	if err != nil {
		return polarity.None, fmt.Errorf("conductor: classifying sentence %d: %w", sentence, err)
	}
	return polarity.Of(label), nil
}

func (a *PolarityAssigner) sentenceOpinion(doc *document.Document, sent document.Sentence, forms []string, rep *Report) error {
	p, err := a.classify(sent.Number, forms)
	if err != nil {
		return err
	}
	rep.Classified++

	terms := sentenceTerms(doc, sent)
	if len(terms) == 0 {
		a.logger.Warn("sentence has no terms", zap.Int("sentence", sent.Number))
		return nil
	}
	op := doc.NewOpinion(terms, terms)
	op.Expression.Polarity = p
	rep.Created++
	return nil
}

func (a *PolarityAssigner) existing(doc *document.Document, sent document.Sentence, forms []string, rep *Report) error {
	ops := doc.OpinionsInSentence(sent.Number)
	switch len(ops) {
	case 0:
		return nil
	case 1:
		p, err := a.classify(sent.Number, forms)
		if err != nil {
			return err
		}
		rep.Classified++
		setPolarity(ops[0], p)
		return nil
	}

	index := sent.Index()
	for _, op := range ops {
		firstID, lastID := targetTokenBounds(doc, op)
		tokens, err := window.Tokens(forms, index, firstID, lastID, a.windowMin, a.windowMax)
		if err != nil {
			a.logger.Warn("window skipped", zap.String("opinion", op.ID), zap.Error(err))
			rep.Problems = append(rep.Problems, err)
			continue
		}
		p, err := a.classify(sent.Number, tokens)
		if err != nil {
			return err
		}
		rep.Classified++
		rep.Windows++
		setPolarity(op, p)
		a.logger.Debug("window classified",
			zap.String("opinion", op.ID),
			zap.Strings("window", tokens),
			zap.Stringer("polarity", p))
	}
	return nil
}

// setPolarity writes p on the expression, creating one over the target when
// the opinion had none.
func setPolarity(op *document.Opinion, p polarity.Polarity) {
	if op.Expression == nil {
		span := append([]string(nil), op.Target.Span...)
		op.Expression = &document.OpinionExpression{Span: span}
	}
	op.Expression.Polarity = p
}

// targetTokenBounds returns the first token of the first target term and the
// last token of the last target term. Unresolvable ends come back as the raw
// term IDs so the window lookup fails loudly.
func targetTokenBounds(doc *document.Document, op *document.Opinion) (string, string) {
	span := op.Target.Span
	firstID, lastID := span[0], span[len(span)-1]
	if t, ok := doc.Term(firstID); ok && len(t.Span) > 0 {
		firstID = t.Span[0]
	}
	if t, ok := doc.Term(lastID); ok && len(t.Span) > 0 {
		lastID = t.Span[len(t.Span)-1]
	}
	return firstID, lastID
}

// sentenceTerms returns the terms of sent in token order, each once.
func sentenceTerms(doc *document.Document, sent document.Sentence) []*document.Term {
	var out []*document.Term
	seen := make(map[string]bool)
	for _, tok := range sent.Tokens {
		t, ok := doc.TermOf(tok.ID)
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
