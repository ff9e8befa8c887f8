package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kittclouds/opinion/pkg/lexicon"
	"github.com/kittclouds/opinion/pkg/response"
)

// SQLiteStore is the SQLite-backed ledger. Safe for concurrent use by batch
// workers.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

var _ Storer = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    pass TEXT NOT NULL,
    doc_id TEXT NOT NULL,
    resource TEXT,
    opinions INTEGER DEFAULT 0,
    sentiments INTEGER DEFAULT 0,
    problems INTEGER DEFAULT 0,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_doc ON runs(doc_id);

-- No foreign keys: a run row is written after its opinions
CREATE TABLE IF NOT EXISTS opinions (
    run_id TEXT NOT NULL,
    doc_id TEXT NOT NULL,
    opinion_id TEXT NOT NULL,
    sentence INTEGER,
    target TEXT,
    category TEXT,
    polarity TEXT,
    PRIMARY KEY (run_id, opinion_id)
);

CREATE INDEX IF NOT EXISTS idx_opinions_doc ON opinions(doc_id);

CREATE TABLE IF NOT EXISTS lexicon (
    name TEXT NOT NULL,
    term TEXT NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (name, term)
);
`

// NewSQLiteStore creates a new in-memory ledger.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN opens a ledger at dsn, usually a file path.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: an in-memory database is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// =============================================================================
// Runs
// =============================================================================

// RecordRun inserts run, assigning an ID and finish time when unset.
func (s *SQLiteStore) RecordRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt == 0 {
		run.FinishedAt = time.Now().UnixMilli()
	}
	if run.StartedAt == 0 {
		run.StartedAt = run.FinishedAt
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, pass, doc_id, resource, opinions, sentiments, problems, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Pass, run.DocID, run.Resource, run.Opinions, run.Sentiments,
		run.Problems, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil if not found.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run Run
	var resource sql.NullString
	err := s.db.QueryRow(`
		SELECT id, pass, doc_id, resource, opinions, sentiments, problems, started_at, finished_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Pass, &run.DocID, &resource, &run.Opinions, &run.Sentiments,
		&run.Problems, &run.StartedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Resource = resource.String
	return &run, nil
}

// ListRuns lists the runs of a document, oldest first. An empty docID lists
// every run.
func (s *SQLiteStore) ListRuns(docID string) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error
	const cols = `SELECT id, pass, doc_id, resource, opinions, sentiments, problems, started_at, finished_at FROM runs`
	if docID != "" {
		rows, err = s.db.Query(cols+` WHERE doc_id = ? ORDER BY started_at, id`, docID)
	} else {
		rows, err = s.db.Query(cols + ` ORDER BY started_at, id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var resource sql.NullString
		if err := rows.Scan(&run.ID, &run.Pass, &run.DocID, &resource, &run.Opinions,
			&run.Sentiments, &run.Problems, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Resource = resource.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// =============================================================================
// Opinions
// =============================================================================

// RecordOpinions stores the opinions of a document under runID in one
// transaction.
func (s *SQLiteStore) RecordOpinions(runID, docID string, ops []response.SlimOpinion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO opinions (run_id, doc_id, opinion_id, sentence, target, category, polarity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, opinion_id) DO UPDATE SET
			sentence = excluded.sentence,
			target = excluded.target,
			category = excluded.category,
			polarity = excluded.polarity
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, op := range ops {
		if _, err := stmt.Exec(runID, docID, op.ID, op.Sentence, op.Target, op.Category, op.Polarity); err != nil {
			return fmt.Errorf("failed to record opinion %s: %w", op.ID, err)
		}
	}
	return tx.Commit()
}

// ListOpinions returns stored opinions of a document, grouped by run.
func (s *SQLiteStore) ListOpinions(docID string) ([]*OpinionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT o.run_id, o.doc_id, o.opinion_id, o.sentence, o.target, o.category, o.polarity
		FROM opinions o LEFT JOIN runs r ON r.id = o.run_id
		WHERE o.doc_id = ?
		ORDER BY r.started_at, o.run_id, o.rowid
	`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*OpinionRecord
	for rows.Next() {
		var rec OpinionRecord
		var target, category, pol sql.NullString
		var sentence sql.NullInt64
		if err := rows.Scan(&rec.RunID, &rec.DocID, &rec.ID, &sentence, &target, &category, &pol); err != nil {
			return nil, err
		}
		rec.Sentence = int(sentence.Int64)
		rec.Target = target.String
		rec.Category = category.String
		rec.Polarity = pol.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountOpinions returns the number of stored opinions.
func (s *SQLiteStore) CountOpinions() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM opinions`).Scan(&n)
	return n, err
}

// =============================================================================
// Lexicons
// =============================================================================

// ImportLexicon replaces the lexicon called name with entries.
func (s *SQLiteStore) ImportLexicon(name string, entries []lexicon.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM lexicon WHERE name = ?`, name); err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO lexicon (name, term, label) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(name, e.Term, e.Label); err != nil {
			return 0, fmt.Errorf("failed to import %q: %w", e.Term, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// LoadLexicon builds a dictionary from a stored lexicon. Returns nil if the
// lexicon does not exist.
func (s *SQLiteStore) LoadLexicon(name string) (*lexicon.Dictionary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT term, label FROM lexicon WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var term, label string
		if err := rows.Scan(&term, &label); err != nil {
			return nil, err
		}
		entries[term] = label
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return lexicon.NewDictionary(name, entries), nil
}

// ListLexicons returns the stored lexicon names.
func (s *SQLiteStore) ListLexicons() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT DISTINCT name FROM lexicon ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
