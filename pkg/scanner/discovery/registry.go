// Package discovery tracks candidate opinion targets seen within a document.
// Candidates mentioned often enough are promoted, which lets the chunker label
// later mentions that lack syntactic cues. The registry is the chunker's
// adaptive state and is cleared at document or sentence boundaries.
package discovery

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball"
	"github.com/orsinium-labs/stopwords"

	"github.com/kittclouds/opinion/pkg/lexicon"
)

// CandidateStatus tracks the lifecycle of a candidate.
type CandidateStatus int

const (
	StatusWatching CandidateStatus = iota
	StatusPromoted
	StatusIgnored
)

func (s CandidateStatus) String() string {
	switch s {
	case StatusPromoted:
		return "promoted"
	case StatusIgnored:
		return "ignored"
	default:
		return "watching"
	}
}

// CandidateStats is what the registry knows about one candidate.
type CandidateStats struct {
	Count   int
	Status  CandidateStatus
	Display string // first surface form seen
}

// Registry counts candidate mentions.
type Registry struct {
	Stats              map[string]*CandidateStats
	PromotionThreshold int
	StopWords          map[string]bool
	stopwordChecker    *stopwords.Stopwords
	stem               func(word string) string
}

// NewRegistry creates a registry for lang. Languages without a stopword list
// use the English one.
func NewRegistry(threshold int, lang string) *Registry {
	if threshold < 1 {
		threshold = 1
	}
	return &Registry{
		Stats:              make(map[string]*CandidateStats),
		PromotionThreshold: threshold,
		StopWords:          make(map[string]bool),
		stopwordChecker:    loadStopwords(lang),
		stem:               stemmer(lang),
	}
}

var snowballLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"hu": "hungarian",
}

// stemmer returns a snowball stemmer for an ISO 639-1 code, or nil.
func stemmer(lang string) func(string) string {
	name, ok := snowballLanguages[strings.ToLower(lang)]
	if !ok {
		return nil
	}
	return func(word string) string {
		stem, err := snowball.Stem(word, name, true)
		if err != nil || stem == "" {
			return word
		}
		return stem
	}
}

func loadStopwords(lang string) (sw *stopwords.Stopwords) {
	defer func() {
		if recover() != nil {
			sw = stopwords.MustGet("en")
		}
	}()
	return stopwords.MustGet(strings.ToLower(lang))
}

// Canonicalize returns the registry key for a candidate phrase.
func Canonicalize(raw string) (string, bool) {
	key := lexicon.Fold(raw)
	return key, key != ""
}

// key canonicalizes raw and stems each word, so inflected mentions of one
// candidate ("screen", "screens") share an entry.
func (r *Registry) key(raw string) (string, bool) {
	folded, ok := Canonicalize(raw)
	if !ok || r.stem == nil {
		return folded, ok
	}
	words := strings.Fields(folded)
	for i, w := range words {
		words[i] = r.stem(w)
	}
	return strings.Join(words, " "), true
}

// AddStopWord adds a custom ignored word.
func (r *Registry) AddStopWord(word string) {
	r.StopWords[lexicon.Fold(word)] = true
}

// IsStopword reports whether every word of phrase is a stopword.
func (r *Registry) IsStopword(phrase string) bool {
	words := strings.Fields(lexicon.Fold(phrase))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if !r.StopWords[w] && (r.stopwordChecker == nil || !r.stopwordChecker.Contains(w)) {
			return false
		}
	}
	return true
}

// Observe records a mention. Returns true if this mention promoted it.
func (r *Registry) Observe(raw string) bool {
	if r.IsStopword(raw) {
		return false
	}
	key, valid := r.key(raw)
	if !valid {
		return false
	}

	stats, exists := r.Stats[key]
	if !exists {
		stats = &CandidateStats{Status: StatusWatching, Display: raw}
		r.Stats[key] = stats
	}
	stats.Count++
	if stats.Status != StatusWatching {
		return false
	}
	if stats.Count >= r.PromotionThreshold {
		stats.Status = StatusPromoted
		return true
	}
	return false
}

// Ignore marks a candidate so it is never promoted.
func (r *Registry) Ignore(raw string) {
	key, valid := r.key(raw)
	if !valid {
		return
	}
	if stats, ok := r.Stats[key]; ok {
		stats.Status = StatusIgnored
		return
	}
	r.Stats[key] = &CandidateStats{Status: StatusIgnored, Display: raw}
}

// Status returns the status of a candidate.
func (r *Registry) Status(raw string) CandidateStatus {
	key, valid := r.key(raw)
	if !valid {
		return StatusIgnored
	}
	if s, ok := r.Stats[key]; ok {
		return s.Status
	}
	return StatusWatching
}

// Promoted is shorthand for Status(raw) == StatusPromoted.
func (r *Registry) Promoted(raw string) bool {
	return r.Status(raw) == StatusPromoted
}

// GetStats returns the stats for a candidate, or nil.
func (r *Registry) GetStats(raw string) *CandidateStats {
	key, _ := r.key(raw)
	return r.Stats[key]
}

// Reset forgets every candidate. Custom stopwords survive.
func (r *Registry) Reset() {
	r.Stats = make(map[string]*CandidateStats)
}

// Len returns the number of tracked candidates.
func (r *Registry) Len() int {
	return len(r.Stats)
}

// Candidate is a public view of a tracked candidate.
type Candidate struct {
	Token  string `json:"token"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

// GetCandidates returns all candidates, most frequent first.
func (r *Registry) GetCandidates() []Candidate {
	list := make([]Candidate, 0, len(r.Stats))
	for _, stats := range r.Stats {
		list = append(list, Candidate{
			Token:  stats.Display,
			Count:  stats.Count,
			Status: stats.Status.String(),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Token < list[j].Token
	})
	return list
}
