package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kittclouds/opinion/pkg/config"
	"github.com/kittclouds/opinion/pkg/polarity"
)

// Tagger looks up the polarity of a word or phrase.
type Tagger interface {
	Lookup(text string) polarity.Polarity
	// Name identifies the resource in sentiment provenance.
	Name() string
}

// Dictionary is an in-memory term to polarity table. Lookups are exact after
// Key normalisation, so "Great" and "great" are distinct entries. A Dictionary
// is read-only once built and safe for concurrent use.
type Dictionary struct {
	name    string
	entries map[string]string
}

// NewDictionary builds a dictionary from term to label pairs.
func NewDictionary(name string, entries map[string]string) *Dictionary {
	d := &Dictionary{name: name, entries: make(map[string]string, len(entries))}
	for term, label := range entries {
		if k := Key(term); k != "" && strings.TrimSpace(label) != "" {
			d.entries[k] = strings.TrimSpace(label)
		}
	}
	return d
}

// LoadDictionary reads a tab-separated "term<TAB>polarity" file. The resource
// name is the file's base name without extension.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	defer f.Close()

	entries, err := readPairs(f)
	if err != nil {
		return nil, &config.ResourceError{Resource: path, Err: err}
	}
	return NewDictionary(ResourceName(path), entries), nil
}

// ReadDictionary reads the same format as LoadDictionary from r.
func ReadDictionary(name string, r io.Reader) (*Dictionary, error) {
	entries, err := readPairs(r)
	if err != nil {
		return nil, &config.ResourceError{Resource: name, Err: err}
	}
	return NewDictionary(name, entries), nil
}

// ResourceName strips directories and the extension from a resource path.
func ResourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readPairs parses "key<TAB>value" lines. Blank lines and lines starting with
// '#' are skipped. A line without a tab splits on its last run of spaces so
// that hand-written files still load.
func readPairs(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "\t")
		if !ok {
			trimmed := strings.TrimSpace(line)
			i := strings.LastIndexAny(trimmed, " ")
			if i < 0 {
				return nil, fmt.Errorf("line %d: missing value", lineNo)
			}
			key, val = trimmed[:i], trimmed[i+1:]
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if key == "" || val == "" {
			return nil, fmt.Errorf("line %d: empty key or value", lineNo)
		}
		out[key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Name returns the resource name.
func (d *Dictionary) Name() string {
	return d.name
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the polarity recorded for text, or None.
func (d *Dictionary) Lookup(text string) polarity.Polarity {
	label, ok := d.entries[Key(text)]
	if !ok {
		return polarity.None
	}
	return polarity.Of(label)
}

// Entry is one dictionary row.
type Entry struct {
	Term  string
	Label string
}

// Entries returns all rows sorted by term.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for term, label := range d.entries {
		out = append(out, Entry{Term: term, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}
