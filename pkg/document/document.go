// Package document holds the in-memory annotation document: word forms grouped
// into sentences, the terms built over them, and the opinions attached by the
// annotation passes.
//
// Documents are built per run, either decoded from JSON (Read) or assembled
// with AddSentence/AddTerm. All mutation goes through methods so the lookup
// indexes stay consistent; callers editing the exported slices directly must
// call Index afterwards.
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kittclouds/opinion/pkg/polarity"
)

// Token is a word form with a document-unique ID and its sentence number.
type Token struct {
	ID     string `json:"id"`
	Form   string `json:"form"`
	Sent   int    `json:"sent"`
	Offset int    `json:"offset,omitempty"`
}

// Sentiment is a polarity attached to a term by a lexical resource.
type Sentiment struct {
	Polarity polarity.Polarity `json:"polarity"`
	Resource string            `json:"resource"`
}

// Term is a lemma + surface form covering one or more tokens.
type Term struct {
	ID         string      `json:"id"`
	Lemma      string      `json:"lemma"`
	Form       string      `json:"form"`
	POS        string      `json:"pos,omitempty"`
	Span       []string    `json:"span"` // token IDs
	Sentiments []Sentiment `json:"sentiments,omitempty"`
}

// SetSentiment attaches p under resource. A term keeps at most one sentiment
// per resource: an existing record is updated in place and false is returned.
func (t *Term) SetSentiment(p polarity.Polarity, resource string) bool {
	for i := range t.Sentiments {
		if t.Sentiments[i].Resource == resource {
			t.Sentiments[i].Polarity = p
			return false
		}
	}
	t.Sentiments = append(t.Sentiments, Sentiment{Polarity: p, Resource: resource})
	return true
}

// Sentiment returns the sentiment recorded by resource.
func (t *Term) Sentiment(resource string) (Sentiment, bool) {
	for _, s := range t.Sentiments {
		if s.Resource == resource {
			return s, true
		}
	}
	return Sentiment{}, false
}

// OpinionTarget is the term span naming the evaluated entity or aspect.
type OpinionTarget struct {
	Span []string `json:"span"` // term IDs
}

// OpinionExpression is the term span carrying the sentiment.
type OpinionExpression struct {
	Span     []string          `json:"span"` // term IDs
	Polarity polarity.Polarity `json:"polarity"`
	Category string            `json:"category,omitempty"`
}

// Opinion groups an optional target and an optional expression.
type Opinion struct {
	ID         string             `json:"id"`
	Target     *OpinionTarget     `json:"target,omitempty"`
	Expression *OpinionExpression `json:"expression,omitempty"`
}

// Sentence is an ordered run of tokens sharing a sentence number.
type Sentence struct {
	Number int
	Tokens []*Token
}

// Len returns the number of tokens.
func (s Sentence) Len() int {
	return len(s.Tokens)
}

// Forms returns the token forms in order.
func (s Sentence) Forms() []string {
	out := make([]string, len(s.Tokens))
	for i, tok := range s.Tokens {
		out[i] = tok.Form
	}
	return out
}

// IDs returns the token IDs in order.
func (s Sentence) IDs() []string {
	out := make([]string, len(s.Tokens))
	for i, tok := range s.Tokens {
		out[i] = tok.ID
	}
	return out
}

// Index maps token IDs to their position in the sentence.
func (s Sentence) Index() map[string]int {
	out := make(map[string]int, len(s.Tokens))
	for i, tok := range s.Tokens {
		out[tok.ID] = i
	}
	return out
}

// Document is the unit processed by one annotation run.
type Document struct {
	ID       string     `json:"id,omitempty"`
	Lang     string     `json:"lang,omitempty"`
	Tokens   []*Token   `json:"text"`
	Terms    []*Term    `json:"terms"`
	Opinions []*Opinion `json:"opinions,omitempty"`

	tokenByID   map[string]*Token
	termByID    map[string]*Term
	termByToken map[string]*Term
	opinionIDs  map[string]bool
	sentences   []Sentence
	sentByNum   map[int]int
}

// New creates an empty document.
func New(id, lang string) *Document {
	d := &Document{ID: id, Lang: lang}
	d.reset()
	return d
}

func (d *Document) reset() {
	d.tokenByID = make(map[string]*Token)
	d.termByID = make(map[string]*Term)
	d.termByToken = make(map[string]*Term)
	d.opinionIDs = make(map[string]bool)
	d.sentences = nil
	d.sentByNum = make(map[int]int)
}

// Index rebuilds the lookup tables from the exported slices and validates the
// references between layers.
func (d *Document) Index() error {
	d.reset()
	for _, tok := range d.Tokens {
		if tok.ID == "" {
			return fmt.Errorf("document: token with empty id")
		}
		if _, dup := d.tokenByID[tok.ID]; dup {
			return fmt.Errorf("document: duplicate token id %s", tok.ID)
		}
		d.indexToken(tok)
	}
	for _, term := range d.Terms {
		if _, dup := d.termByID[term.ID]; dup {
			return fmt.Errorf("document: duplicate term id %s", term.ID)
		}
		if err := d.indexTerm(term); err != nil {
			return err
		}
	}
	for _, op := range d.Opinions {
		d.opinionIDs[op.ID] = true
	}
	return nil
}

func (d *Document) indexToken(tok *Token) {
	d.tokenByID[tok.ID] = tok
	idx, ok := d.sentByNum[tok.Sent]
	if !ok {
		idx = len(d.sentences)
		d.sentByNum[tok.Sent] = idx
		d.sentences = append(d.sentences, Sentence{Number: tok.Sent})
	}
	d.sentences[idx].Tokens = append(d.sentences[idx].Tokens, tok)
}

func (d *Document) indexTerm(term *Term) error {
	if len(term.Span) == 0 {
		return fmt.Errorf("document: term %s has an empty span", term.ID)
	}
	for _, id := range term.Span {
		if _, ok := d.tokenByID[id]; !ok {
			return fmt.Errorf("document: term %s references unknown token %s", term.ID, id)
		}
		if other, taken := d.termByToken[id]; taken {
			return fmt.Errorf("document: token %s belongs to terms %s and %s", id, other.ID, term.ID)
		}
	}
	d.termByID[term.ID] = term
	for _, id := range term.Span {
		d.termByToken[id] = term
	}
	return nil
}

// AddSentence appends a sentence built from forms and returns its tokens.
// Token IDs continue the w1, w2, ... sequence.
func (d *Document) AddSentence(forms ...string) []*Token {
	num := 1
	if n := len(d.sentences); n > 0 {
		num = d.sentences[n-1].Number + 1
	}
	toks := make([]*Token, 0, len(forms))
	for _, form := range forms {
		tok := &Token{ID: d.nextID("w", len(d.Tokens), d.hasToken), Form: form, Sent: num}
		d.Tokens = append(d.Tokens, tok)
		d.indexToken(tok)
		toks = append(toks, tok)
	}
	return toks
}

// AddTerm creates a term over the given tokens.
func (d *Document) AddTerm(lemma, form, pos string, tokens ...*Token) (*Term, error) {
	span := make([]string, len(tokens))
	for i, tok := range tokens {
		span[i] = tok.ID
	}
	term := &Term{
		ID:    d.nextID("t", len(d.Terms), d.hasTerm),
		Lemma: lemma,
		Form:  form,
		POS:   pos,
		Span:  span,
	}
	if err := d.indexTerm(term); err != nil {
		return nil, err
	}
	d.Terms = append(d.Terms, term)
	return term, nil
}

// NewOpinion appends an opinion. A nil or empty target leaves the target unset;
// likewise for the expression.
func (d *Document) NewOpinion(target, expression []*Term) *Opinion {
	op := &Opinion{ID: d.nextID("o", len(d.Opinions), d.hasOpinion)}
	if len(target) > 0 {
		op.Target = &OpinionTarget{Span: termIDs(target)}
	}
	if len(expression) > 0 {
		op.Expression = &OpinionExpression{Span: termIDs(expression)}
	}
	d.Opinions = append(d.Opinions, op)
	d.opinionIDs[op.ID] = true
	return op
}

func termIDs(terms []*Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.ID
	}
	return out
}

func (d *Document) hasToken(id string) bool   { _, ok := d.tokenByID[id]; return ok }
func (d *Document) hasTerm(id string) bool    { _, ok := d.termByID[id]; return ok }
func (d *Document) hasOpinion(id string) bool { return d.opinionIDs[id] }

func (d *Document) nextID(prefix string, count int, taken func(string) bool) string {
	for n := count + 1; ; n++ {
		id := prefix + strconv.Itoa(n)
		if !taken(id) {
			return id
		}
	}
}

// Sentences returns the sentences in document order.
func (d *Document) Sentences() []Sentence {
	return d.sentences
}

// Token returns the token with the given ID.
func (d *Document) Token(id string) (*Token, bool) {
	tok, ok := d.tokenByID[id]
	return tok, ok
}

// Term returns the term with the given ID.
func (d *Document) Term(id string) (*Term, bool) {
	term, ok := d.termByID[id]
	return term, ok
}

// TermOf returns the term covering the token.
func (d *Document) TermOf(tokenID string) (*Term, bool) {
	term, ok := d.termByToken[tokenID]
	return term, ok
}

// TermTokens returns the tokens covered by term, in span order.
func (d *Document) TermTokens(term *Term) []*Token {
	out := make([]*Token, 0, len(term.Span))
	for _, id := range term.Span {
		if tok, ok := d.tokenByID[id]; ok {
			out = append(out, tok)
		}
	}
	return out
}

// Resolve maps term IDs back to terms, skipping unknown IDs.
func (d *Document) Resolve(ids []string) []*Term {
	out := make([]*Term, 0, len(ids))
	for _, id := range ids {
		if term, ok := d.termByID[id]; ok {
			out = append(out, term)
		}
	}
	return out
}

// TermsForTokens maps token IDs of sentence to their terms. Consecutive tokens
// of a multi-token term yield the term once. A token without a term is
// reported as a *MappingError.
func (d *Document) TermsForTokens(sentence int, tokenIDs []string) ([]*Term, error) {
	out := make([]*Term, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		term, ok := d.termByToken[id]
		if !ok {
			return nil, &MappingError{Sentence: sentence, TokenID: id}
		}
		if n := len(out); n > 0 && out[n-1] == term {
			continue
		}
		out = append(out, term)
	}
	return out, nil
}

// SentenceOf returns the sentence number of the term's first token.
func (d *Document) SentenceOf(term *Term) (int, bool) {
	if term == nil || len(term.Span) == 0 {
		return 0, false
	}
	tok, ok := d.tokenByID[term.Span[0]]
	if !ok {
		return 0, false
	}
	return tok.Sent, true
}

// OpinionSentence returns the sentence number of an opinion's target, taken
// from the first term of the target span.
func (d *Document) OpinionSentence(op *Opinion) (int, bool) {
	if op.Target == nil || len(op.Target.Span) == 0 {
		return 0, false
	}
	term, ok := d.termByID[op.Target.Span[0]]
	if !ok {
		return 0, false
	}
	return d.SentenceOf(term)
}

// OpinionsInSentence returns the opinions whose target starts in sentence n.
func (d *Document) OpinionsInSentence(n int) []*Opinion {
	var out []*Opinion
	for _, op := range d.Opinions {
		if sent, ok := d.OpinionSentence(op); ok && sent == n {
			out = append(out, op)
		}
	}
	return out
}

// ToExternalFormat renders the document as indented JSON.
func (d *Document) ToExternalFormat() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("document: marshal: %w", err)
	}
	return string(data), nil
}

// Read decodes a JSON document and builds its indexes.
func Read(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("document: decode: %w", err)
	}
	if err := d.Index(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFile reads a JSON document from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
