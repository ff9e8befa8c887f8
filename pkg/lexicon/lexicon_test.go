package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/document"
	"github.com/kittclouds/opinion/pkg/polarity"
	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"don’t  stop", "don't stop"},
		{"2020–2021", "2020-2021"},
		{"  Battery\tLife ", "battery life"},
	}
	for _, tc := range tests {
		if got := Fold(tc.input); got != tc.expected {
			t.Errorf("Fold(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestKeyPreservesCase(t *testing.T) {
	assert.Equal(t, "Great deal", Key(" Great  deal "))
	assert.Equal(t, "caf\u00e9", Key("cafe\u0301"))
}

func TestReadDictionary(t *testing.T) {
	src := "# general lexicon\ngreat\tpositive\nawful\tnegative\r\n\nso so neutral\n"
	d, err := ReadDictionary("general", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, polarity.Of("positive"), d.Lookup("great"))
	assert.Equal(t, polarity.Of("neutral"), d.Lookup("so so"))
	assert.True(t, d.Lookup("Great").IsNone())
	assert.Equal(t, []Entry{{"awful", "negative"}, {"great", "positive"}, {"so so", "neutral"}}, d.Entries())
}

func TestReadDictionaryMalformed(t *testing.T) {
	_, err := ReadDictionary("bad", strings.NewReader("lonely\n"))
	var re *config.ResourceError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "bad", re.Resource)
}

func TestLoadDictionaryName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotel-lexicon.tsv")
	require.NoError(t, os.WriteFile(path, []byte("clean\tpositive\n"), 0o644))
	d, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, "hotel-lexicon", d.Name())

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "nope.tsv"))
	var re *config.ResourceError
	assert.True(t, errors.As(err, &re))
}

func TestPolarityResolverFallback(t *testing.T) {
	dict := NewDictionary("general", map[string]string{"great": "positive"})
	r := NewPolarityResolver(dict)

	hit := &document.Term{ID: "t1", Form: "Great", Lemma: "great"}
	assert.True(t, r.Annotate(hit))
	s, ok := hit.Sentiment("general")
	require.True(t, ok)
	assert.Equal(t, "positive", s.Polarity.Label())

	miss := &document.Term{ID: "t2", Form: "Phone", Lemma: "phone"}
	assert.False(t, r.Annotate(miss))
	assert.Empty(t, miss.Sentiments)
}

func TestPolarityResolverSurfaceFirst(t *testing.T) {
	dict := NewDictionary("d", map[string]string{"worse": "negative", "bad": "neutral"})
	term := &document.Term{Form: "worse", Lemma: "bad"}
	assert.Equal(t, "negative", NewPolarityResolver(dict).Lookup(term).Label())
}

func TestAnnotateDocumentIsStable(t *testing.T) {
	doc, err := document.FromSentences("d", "en", [][]string{{"great", "food"}, {"great"}}, strings.ToLower)
	require.NoError(t, err)
	r := NewPolarityResolver(NewDictionary("general", map[string]string{"great": "positive"}))

	assert.Equal(t, 2, r.AnnotateDocument(doc))
	assert.Equal(t, 2, r.AnnotateDocument(doc))
	for _, term := range doc.Terms {
		assert.LessOrEqual(t, len(term.Sentiments), 1)
	}
}

func TestGazetteerSequences(t *testing.T) {
	g, err := NewGazetteer("aspects", map[string]string{
		"battery life": "BATTERY",
		"screen":       "DISPLAY",
		"life":         "OTHER",
	})
	require.NoError(t, err)

	tokens := []string{"The", "Battery", "life", "and", "screen", "rock", "."}
	spans, err := g.GetSequences(tokens)
	require.NoError(t, err)
	assert.Contains(t, spans, resolver.NewSpan(1, 3, "BATTERY"))
	assert.Contains(t, spans, resolver.NewSpan(4, 5, "DISPLAY"))

	got := resolver.Resolve(spans)
	assert.Equal(t, []resolver.Span{resolver.NewSpan(1, 3, "BATTERY"), resolver.NewSpan(4, 5, "DISPLAY")}, got)
}

func TestGazetteerTokenBoundaries(t *testing.T) {
	g, err := NewGazetteer("aspects", map[string]string{"screen": DefaultCategory})
	require.NoError(t, err)
	spans, err := g.GetSequences([]string{"screensaver", "is", "on"})
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestLoadGazetteer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aspects.txt")
	require.NoError(t, os.WriteFile(path, []byte("wifi\n# comment\nroom service\tSERVICE\n"), 0o644))
	g, err := LoadGazetteer(path)
	require.NoError(t, err)
	assert.Equal(t, "aspects", g.Name())
	assert.Equal(t, 2, g.Len())

	spans, err := g.GetSequences([]string{"WiFi", "was", "slow"})
	require.NoError(t, err)
	assert.Equal(t, []resolver.Span{resolver.NewSpan(0, 1, DefaultCategory)}, spans)
}

func TestEmptyGazetteer(t *testing.T) {
	g, err := NewGazetteer("none", nil)
	require.NoError(t, err)
	spans, err := g.GetSequences([]string{"a"})
	require.NoError(t, err)
	assert.Nil(t, spans)
}
