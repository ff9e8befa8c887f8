package chunker

import (
	"reflect"
	"testing"

	"github.com/kittclouds/opinion/pkg/scanner/discovery"
	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

func TestTag(t *testing.T) {
	tagger := NewTagger()
	got := tagger.Tag([]string{"The", "battery", "is", "great", ",", "I", "really", "loved", "it"})
	want := []POS{Determiner, Noun, Auxiliary, Adjective, Punctuation, Pronoun, Adverb, Verb, Pronoun}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tag = %v, want %v", got, want)
	}
}

func TestTagContextRules(t *testing.T) {
	tagger := NewTagger()
	got := tagger.Tag([]string{"the", "charge", "will", "charge"})
	want := []POS{Determiner, Noun, Modal, Verb}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tag = %v, want %v", got, want)
	}
	if tags := tagger.Tag([]string{"-DOCSTART-"}); tags[0] != Punctuation {
		t.Errorf("marker should be punctuation, got %v", tags[0])
	}
	if tags := tagger.Tag([]string{"Waiter", "Bob"}); tags[0] != Noun || tags[1] != ProperNoun {
		t.Errorf("unexpected tags %v", tags)
	}
}

func TestLabelerCues(t *testing.T) {
	l := New(discovery.NewRegistry(2, "en"))
	spans, err := l.GetSequences([]string{"The", "screen", "is", "great", "but", "battery", "life", "is", "bad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []resolver.Span{
		resolver.NewSpan(1, 2, Label).WithScore(scoreBothCues),
		resolver.NewSpan(5, 7, Label).WithScore(scoreOneCue),
	}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("Expected %v, got %v", want, spans)
	}
}

func TestLabelerPromotionIsAdaptive(t *testing.T) {
	l := New(discovery.NewRegistry(2, "en"))
	bare := []string{"loved", "camera", "!"}

	for i := 0; i < 2; i++ {
		spans, _ := l.GetSequences(bare)
		if len(spans) != 0 {
			t.Fatalf("mention %d should not be labelled yet: %v", i+1, spans)
		}
	}
	spans, _ := l.GetSequences(bare)
	if len(spans) != 1 || spans[0].Start != 1 || spans[0].Score != scorePromoted {
		t.Fatalf("promoted candidate should be labelled, got %v", spans)
	}

	l.ClearAdaptiveState()
	if spans, _ := l.GetSequences(bare); len(spans) != 0 {
		t.Errorf("after reset the candidate should be unknown again, got %v", spans)
	}
}
