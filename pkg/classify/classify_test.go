package classify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/polarity"
)

func TestVaderLabels(t *testing.T) {
	v := NewVader(WithCarryOver(0))
	for _, tc := range []struct {
		tokens []string
		want   string
	}{
		{[]string{"The", "food", "was", "great"}, polarity.Positive},
		{[]string{"terrible", "service"}, polarity.Negative},
		{[]string{"The", "table"}, polarity.Neutral},
		{nil, polarity.Neutral},
	} {
		got, err := v.Classify(tc.tokens)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%v", tc.tokens)
	}
}

func TestVaderCarryOverIsAdaptive(t *testing.T) {
	v := NewVader(WithCarryOver(0.5))
	_, err := v.Classify([]string{"great", "amazing", "food"})
	require.NoError(t, err)

	got, _ := v.Classify([]string{"the", "table"})
	assert.Equal(t, polarity.Positive, got, "neutral window inherits the previous tone")

	v.ClearAdaptiveState()
	got, _ = v.Classify([]string{"the", "table"})
	assert.Equal(t, polarity.Neutral, got)
}

func testModel() *MaxentModel {
	return &MaxentModel{
		Labels:   []string{"positive", "negative"},
		Features: []string{"w=good", "w=bad", PrevFeature + "negative"},
		Weights: [][]float64{
			{2, -2, 0},
			{-2, 2, 5},
		},
		Bias: []float64{0.1, 0},
	}
}

func TestMaxentClassify(t *testing.T) {
	m, err := NewMaxent(testModel())
	require.NoError(t, err)

	got, err := m.Classify([]string{"Good", "phone"})
	require.NoError(t, err)
	assert.Equal(t, "positive", got)

	got, _ = m.Classify([]string{"bad"})
	assert.Equal(t, "negative", got)

	// prev=negative outweighs one positive word
	got, _ = m.Classify([]string{"good"})
	assert.Equal(t, "negative", got)

	m.ClearAdaptiveState()
	got, _ = m.Classify([]string{"good"})
	assert.Equal(t, "positive", got)

	// no features: the bias decides
	got, _ = m.Classify([]string{"unknown"})
	assert.Equal(t, "positive", got)
}

func TestMaxentProbabilitiesSumToOne(t *testing.T) {
	m, err := NewMaxent(testModel())
	require.NoError(t, err)
	var sum float64
	for _, p := range m.Probabilities([]string{"good", "bad", "bad"}, "") {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestMaxentValidate(t *testing.T) {
	bad := testModel()
	bad.Weights[1] = []float64{1}
	_, err := NewMaxent(bad)
	assert.Error(t, err)
}

func TestLoadMaxentAndNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"labels":["positive","negative"],"features":["w=good"],"weights":[[1],[-1]]}`), 0o644))

	c, err := New(path)
	require.NoError(t, err)
	_, ok := c.(*Maxent)
	assert.True(t, ok)

	c, err = New("VADER")
	require.NoError(t, err)
	_, ok = c.(*Vader)
	assert.True(t, ok)

	_, err = New(filepath.Join(t.TempDir(), "missing.json"))
	var re *config.ResourceError
	assert.True(t, errors.As(err, &re))
}
