package document

import (
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/neurosnap/sentences.v1/english"
)

// Lemmatizer maps a surface form to the lemma stored on its term. The lemma
// is what dictionary lookups fall back to, so it must be a dictionary-style
// word, not a stem.
type Lemmatizer func(form string) string

// Lowercase is the default Lemmatizer.
func Lowercase(form string) string {
	return strings.ToLower(form)
}

// FromSentences builds a document with one single-token term per form.
func FromSentences(id, lang string, sentences [][]string, lemma Lemmatizer) (*Document, error) {
	if lemma == nil {
		lemma = Lowercase
	}
	d := New(id, lang)
	for _, forms := range sentences {
		if len(forms) == 0 {
			continue
		}
		for _, tok := range d.AddSentence(forms...) {
			if _, err := d.AddTerm(lemma(tok.Form), tok.Form, "", tok); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// FromText segments raw text into sentences and word tokens and builds a
// document over them. Sentences are split with the English punkt model
// whatever lang says; lang is recorded on the document and selects the
// stopword and stemmer language downstream.
func FromText(id, lang, text string, lemma Lemmatizer) (*Document, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("document: failed to load sentence tokenizer: %w", err)
	}
	var sents [][]string
	for _, s := range tokenizer.Tokenize(text) {
		if words := SplitWords(s.Text); len(words) > 0 {
			sents = append(sents, words)
		}
	}
	return FromSentences(id, lang, sents, lemma)
}

// SplitWords splits on whitespace and detaches leading and trailing
// punctuation into their own tokens.
func SplitWords(text string) []string {
	var out []string
	for _, field := range strings.Fields(text) {
		runes := []rune(field)
		start, end := 0, len(runes)
		for start < end && unicode.IsPunct(runes[start]) {
			out = append(out, string(runes[start]))
			start++
		}
		var tail []string
		for end > start && unicode.IsPunct(runes[end-1]) && runes[end-1] != '\'' {
			tail = append(tail, string(runes[end-1]))
			end--
		}
		if start < end {
			out = append(out, string(runes[start:end]))
		}
		for i := len(tail) - 1; i >= 0; i-- {
			out = append(out, tail[i])
		}
	}
	return out
}
