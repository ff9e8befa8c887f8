// Package store provides the SQLite annotation ledger: one row per pass over
// a document, the opinions that pass left behind, and named polarity
// lexicons that can be used in place of dictionary files.
package store

import (
	"github.com/kittclouds/opinion/pkg/lexicon"
	"github.com/kittclouds/opinion/pkg/response"
)

// Pass names recorded in runs.
const (
	PassTargets  = "ote"
	PassPolarity = "pol"
	PassBoth     = "annotate"
)

// Run is one annotation pass over one document.
type Run struct {
	ID         string `json:"id"`
	Pass       string `json:"pass"`
	DocID      string `json:"docId"`
	Resource   string `json:"resource,omitempty"` // dictionary provenance, if any
	Opinions   int    `json:"opinions"`
	Sentiments int    `json:"sentiments"`
	Problems   int    `json:"problems"`
	StartedAt  int64  `json:"startedAt"`
	FinishedAt int64  `json:"finishedAt"`
}

// OpinionRecord is an opinion as stored in the ledger.
type OpinionRecord struct {
	RunID string `json:"runId"`
	DocID string `json:"docId"`
	response.SlimOpinion
}

// Storer is the ledger interface. SQLiteStore is the sole implementation.
type Storer interface {
	// Runs
	RecordRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(docID string) ([]*Run, error)

	// Opinions
	RecordOpinions(runID, docID string, ops []response.SlimOpinion) error
	ListOpinions(docID string) ([]*OpinionRecord, error)
	CountOpinions() (int, error)

	// Lexicons
	ImportLexicon(name string, entries []lexicon.Entry) (int, error)
	LoadLexicon(name string) (*lexicon.Dictionary, error)
	ListLexicons() ([]string, error)

	// Lifecycle
	Close() error
}
