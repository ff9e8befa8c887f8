package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/opinion/pkg/polarity"
)

func buildDoc(t *testing.T) *Document {
	t.Helper()
	d := New("d1", "en")
	toks := d.AddSentence("The", "battery", "life", "is", "great")
	_, err := d.AddTerm("the", "The", "DT", toks[0])
	require.NoError(t, err)
	_, err = d.AddTerm("battery life", "battery life", "NN", toks[1], toks[2])
	require.NoError(t, err)
	_, err = d.AddTerm("be", "is", "VB", toks[3])
	require.NoError(t, err)
	_, err = d.AddTerm("great", "great", "JJ", toks[4])
	require.NoError(t, err)

	toks = d.AddSentence("Screen", "broke")
	for _, tok := range toks {
		_, err = d.AddTerm(strings.ToLower(tok.Form), tok.Form, "", tok)
		require.NoError(t, err)
	}
	return d
}

func TestSentences(t *testing.T) {
	d := buildDoc(t)
	sents := d.Sentences()
	require.Len(t, sents, 2)
	assert.Equal(t, 1, sents[0].Number)
	assert.Equal(t, 2, sents[1].Number)
	assert.Equal(t, []string{"Screen", "broke"}, sents[1].Forms())
	assert.Equal(t, []string{"w6", "w7"}, sents[1].IDs())
	assert.Equal(t, 1, sents[1].Index()["w7"])
}

func TestTermsForTokensCollapsesMultiTokenTerms(t *testing.T) {
	d := buildDoc(t)
	terms, err := d.TermsForTokens(1, []string{"w2", "w3"})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "battery life", terms[0].Lemma)
}

func TestTermsForTokensMappingError(t *testing.T) {
	d := buildDoc(t)
	_, err := d.TermsForTokens(1, []string{"w2", "w99"})
	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "w99", me.TokenID)
	assert.Equal(t, 1, me.Sentence)
}

func TestAddTermRejectsSharedToken(t *testing.T) {
	d := New("", "en")
	toks := d.AddSentence("a", "b")
	_, err := d.AddTerm("a", "a", "", toks[0])
	require.NoError(t, err)
	_, err = d.AddTerm("ab", "a b", "", toks[0], toks[1])
	assert.Error(t, err)
	assert.Len(t, d.Terms, 1)
}

func TestOpinionsInSentence(t *testing.T) {
	d := buildDoc(t)
	bl, _ := d.Term("t2")
	screen, _ := d.Term("t5")
	o1 := d.NewOpinion([]*Term{bl}, nil)
	o2 := d.NewOpinion([]*Term{screen}, []*Term{screen})
	d.NewOpinion(nil, []*Term{bl})

	assert.Equal(t, "o1", o1.ID)
	assert.Nil(t, o1.Expression)
	assert.Equal(t, []*Opinion{o1}, d.OpinionsInSentence(1))
	assert.Equal(t, []*Opinion{o2}, d.OpinionsInSentence(2))
	assert.Empty(t, d.OpinionsInSentence(3))
}

func TestSetSentimentOnePerResource(t *testing.T) {
	term := &Term{ID: "t1"}
	assert.True(t, term.SetSentiment(polarity.Of(polarity.Positive), "general"))
	assert.False(t, term.SetSentiment(polarity.Of(polarity.Negative), "general"))
	assert.True(t, term.SetSentiment(polarity.Of(polarity.Positive), "domain"))
	require.Len(t, term.Sentiments, 2)
	s, ok := term.Sentiment("general")
	require.True(t, ok)
	assert.Equal(t, polarity.Negative, s.Polarity.Label())
}

func TestReadRoundTrip(t *testing.T) {
	d := buildDoc(t)
	bl, _ := d.Term("t2")
	d.NewOpinion([]*Term{bl}, nil)

	out, err := d.ToExternalFormat()
	require.NoError(t, err)

	back, err := Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, back.Sentences(), 2)
	assert.Len(t, back.OpinionsInSentence(1), 1)

	op := back.NewOpinion(nil, nil)
	assert.Equal(t, "o2", op.ID)
}

func TestReadRejectsDanglingSpan(t *testing.T) {
	_, err := Read(strings.NewReader(`{"text":[{"id":"w1","form":"x","sent":1}],"terms":[{"id":"t1","lemma":"x","form":"x","span":["w2"]}]}`))
	assert.Error(t, err)
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t,
		[]string{"Great", "phone", ",", "isn't", "it", "?", "(", "yes", ")"},
		SplitWords("Great phone, isn't it? (yes)"))
}

func TestFromSentences(t *testing.T) {
	d, err := FromSentences("x", "en", [][]string{{"Running", "shoes"}, {}, {"ok"}}, nil)
	require.NoError(t, err)
	require.Len(t, d.Sentences(), 2)
	require.Len(t, d.Terms, 3)
	assert.Equal(t, "running", d.Terms[0].Lemma)
	assert.Equal(t, "Running", d.Terms[0].Form)
}

func TestFromTextRecordsLanguage(t *testing.T) {
	d, err := FromText("x", "fr", "Le service est lent. La vue est belle.", nil)
	require.NoError(t, err)
	assert.Equal(t, "fr", d.Lang)
	require.Len(t, d.Sentences(), 2)
	assert.Equal(t, "lent", d.Terms[3].Lemma)
	assert.Equal(t, "la", d.Terms[5].Lemma)
}
