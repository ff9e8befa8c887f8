package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/kittclouds/opinion/pkg/config"
)

// PrevFeature prefixes the adaptive feature carrying the previous outcome.
const PrevFeature = "prev="

// MaxentModel is the on-disk form of a multinomial maxent classifier.
// Weights has one row per label and one column per feature. Features are
// "w=<lowercased token>" or PrevFeature+label.
type MaxentModel struct {
	Labels   []string    `json:"labels"`
	Features []string    `json:"features"`
	Weights  [][]float64 `json:"weights"`
	Bias     []float64   `json:"bias,omitempty"`
}

// Validate checks the matrix shape.
func (m *MaxentModel) Validate() error {
	if len(m.Labels) == 0 || len(m.Features) == 0 {
		return fmt.Errorf("maxent: model needs labels and features")
	}
	if len(m.Weights) != len(m.Labels) {
		return fmt.Errorf("maxent: %d weight rows for %d labels", len(m.Weights), len(m.Labels))
	}
	for i, row := range m.Weights {
		if len(row) != len(m.Features) {
			return fmt.Errorf("maxent: row %d has %d weights for %d features", i, len(row), len(m.Features))
		}
	}
	if len(m.Bias) != 0 && len(m.Bias) != len(m.Labels) {
		return fmt.Errorf("maxent: %d biases for %d labels", len(m.Bias), len(m.Labels))
	}
	return nil
}

// Maxent scores bag-of-words features plus the previous outcome.
type Maxent struct {
	labels  []string
	index   map[string]int
	weights *mat.Dense
	bias    *mat.VecDense

	mu   sync.Mutex
	prev string
}

// NewMaxent compiles a model.
func NewMaxent(m *MaxentModel) (*Maxent, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	rows, cols := len(m.Labels), len(m.Features)
	flat := make([]float64, 0, rows*cols)
	for _, row := range m.Weights {
		flat = append(flat, row...)
	}
	bias := make([]float64, rows)
	copy(bias, m.Bias)

	index := make(map[string]int, cols)
	for i, f := range m.Features {
		index[f] = i
	}
	return &Maxent{
		labels:  append([]string(nil), m.Labels...),
		index:   index,
		weights: mat.NewDense(rows, cols, flat),
		bias:    mat.NewVecDense(rows, bias),
	}, nil
}

// LoadMaxent reads a JSON model file.
func LoadMaxent(path string) (*Maxent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	var m MaxentModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	me, err := NewMaxent(&m)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	return me, nil
}

// Labels returns the outcome labels.
func (m *Maxent) Labels() []string {
	return m.labels
}

// Probabilities returns the softmax distribution over labels for tokens,
// given the previous outcome prev ("" for none).
func (m *Maxent) Probabilities(tokens []string, prev string) []float64 {
	_, cols := m.weights.Dims()
	x := mat.NewVecDense(cols, nil)
	for _, tok := range tokens {
		if i, ok := m.index["w="+strings.ToLower(tok)]; ok {
			x.SetVec(i, x.AtVec(i)+1)
		}
	}
	if prev != "" {
		if i, ok := m.index[PrevFeature+prev]; ok {
			x.SetVec(i, 1)
		}
	}

	var z mat.VecDense
	z.MulVec(m.weights, x)
	z.AddVec(&z, m.bias)

	n := z.Len()
	top := math.Inf(-1)
	for i := 0; i < n; i++ {
		top = math.Max(top, z.AtVec(i))
	}
	probs := make([]float64, n)
	var sum float64
	for i := range probs {
		probs[i] = math.Exp(z.AtVec(i) - top)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Classify returns the most probable label. The outcome becomes the previous
// outcome feature of the next call.
func (m *Maxent) Classify(tokens []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	probs := m.Probabilities(tokens, m.prev)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	m.prev = m.labels[best]
	return m.prev, nil
}

// ClearAdaptiveState forgets the previous outcome.
func (m *Maxent) ClearAdaptiveState() {
	m.mu.Lock()
	m.prev = ""
	m.mu.Unlock()
}
