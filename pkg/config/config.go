// Package config parses the flat key/value properties that drive an
// annotation run.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recognised property keys.
const (
	KeyClearFeatures = "clearFeatures"
	KeyDictionary    = "dictionary"
	KeyWindowMin     = "windowMin"
	KeyWindowMax     = "windowMax"
	KeyClassifier    = "classifier"
	KeyTargets       = "targets"
	KeyLanguage      = "language"
	KeyPromotion     = "promotion"
	KeyDedupe        = "dedupe"
)

// Sentinel values.
const (
	// DictionaryOff disables the dictionary pass.
	DictionaryOff = "off"
	// WindowUnbounded makes a window side extend to the sentence edge.
	WindowUnbounded = "unbounded"
	// Unbounded is the span used for WindowUnbounded.
	Unbounded = 5000

	ClassifierVader  = "vader"
	TargetsHeuristic = "heuristic"
)

// ClearPolicy says when stateful taggers drop their adaptive features.
type ClearPolicy string

const (
	ClearNever         ClearPolicy = "no"
	ClearEverySentence ClearPolicy = "yes"
	ClearOnDocStart    ClearPolicy = "docstart"
)

// Properties is the raw flat configuration.
type Properties map[string]string

// Options is the validated configuration.
type Options struct {
	ClearFeatures ClearPolicy
	// Dictionary is a lexicon path; empty when the dictionary pass is off.
	Dictionary string
	WindowMin  int
	WindowMax  int
	// Classifier is ClassifierVader or a maxent model path.
	Classifier string
	// Targets is TargetsHeuristic or a gazetteer path.
	Targets   string
	Language  string
	Promotion int
	Dedupe    bool
}

// Default returns the options used when no property is set.
func Default() Options {
	return Options{
		ClearFeatures: ClearNever,
		WindowMin:     Unbounded,
		WindowMax:     Unbounded,
		Classifier:    ClassifierVader,
		Targets:       TargetsHeuristic,
		Language:      "en",
		Promotion:     2,
	}
}

// DictionaryEnabled reports whether a dictionary resource is configured.
func (o Options) DictionaryEnabled() bool {
	return o.Dictionary != ""
}

// LoadYAML reads a flat YAML mapping of property names to scalar values.
func LoadYAML(path string) (Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Resource: path, Err: err}
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	props := make(Properties, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			props[k] = ""
		case map[string]interface{}, []interface{}:
			return nil, &ConfigurationError{Key: k, Reason: "nested values are not supported"}
		case bool:
			// yaml.v3 reads bare yes/no as strings, but true/false as bools.
			if val {
				props[k] = "yes"
			} else {
				props[k] = "no"
			}
		default:
			props[k] = fmt.Sprint(val)
		}
	}
	return props, nil
}

// Set parses a key=value assignment into p.
func (p Properties) Set(assignment string) error {
	k, v, ok := strings.Cut(assignment, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return &ConfigurationError{Key: assignment, Reason: "expected key=value"}
	}
	p[k] = strings.TrimSpace(v)
	return nil
}

// Merge copies other over p.
func (p Properties) Merge(other Properties) {
	for k, v := range other {
		p[k] = v
	}
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parse validates p. Unknown keys are rejected so that typos surface before a
// run starts.
func Parse(p Properties) (Options, error) {
	opts := Default()
	for _, key := range p.Keys() {
		val := p[key]
		var err error
		switch key {
		case KeyClearFeatures:
			opts.ClearFeatures, err = parseClear(val)
		case KeyDictionary:
			opts.Dictionary, err = parseDictionary(val)
		case KeyWindowMin:
			opts.WindowMin, err = parseWindow(key, val)
		case KeyWindowMax:
			opts.WindowMax, err = parseWindow(key, val)
		case KeyClassifier:
			opts.Classifier, err = parseResource(key, val, ClassifierVader)
		case KeyTargets:
			opts.Targets, err = parseResource(key, val, TargetsHeuristic)
		case KeyLanguage:
			if val == "" {
				err = &ConfigurationError{Key: key, Reason: "empty language"}
			}
			opts.Language = strings.ToLower(val)
		case KeyPromotion:
			opts.Promotion, err = strconv.Atoi(val)
			if err != nil || opts.Promotion < 1 {
				err = &ConfigurationError{Key: key, Value: val, Reason: "must be a positive integer"}
			}
		case KeyDedupe:
			opts.Dedupe, err = parseYesNo(key, val)
		default:
			err = &ConfigurationError{Key: key, Value: val, Reason: "unknown option"}
		}
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func parseClear(val string) (ClearPolicy, error) {
	switch ClearPolicy(strings.ToLower(val)) {
	case ClearNever:
		return ClearNever, nil
	case ClearEverySentence:
		return ClearEverySentence, nil
	case ClearOnDocStart:
		return ClearOnDocStart, nil
	}
	return "", &ConfigurationError{Key: KeyClearFeatures, Value: val, Reason: "want yes, no or docstart"}
}

func parseDictionary(val string) (string, error) {
	if strings.EqualFold(val, DictionaryOff) {
		return "", nil
	}
	if strings.TrimSpace(val) == "" {
		return "", &ConfigurationError{Key: KeyDictionary, Reason: "dictionary mode requested without a path"}
	}
	return val, nil
}

func parseWindow(key, val string) (int, error) {
	if strings.EqualFold(val, WindowUnbounded) || strings.EqualFold(val, "N") {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, &ConfigurationError{Key: key, Value: val, Reason: "want a non-negative integer or unbounded"}
	}
	return n, nil
}

func parseResource(key, val, builtin string) (string, error) {
	if strings.TrimSpace(val) == "" {
		return "", &ConfigurationError{Key: key, Reason: "empty value"}
	}
	if strings.EqualFold(val, builtin) {
		return builtin, nil
	}
	return val, nil
}

func parseYesNo(key, val string) (bool, error) {
	switch strings.ToLower(val) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	return false, &ConfigurationError{Key: key, Value: val, Reason: "want yes or no"}
}
