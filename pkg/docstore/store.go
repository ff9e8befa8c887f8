// Package docstore holds the documents of a batch run in memory. Inputs are
// loaded once, annotated concurrently, then written out in load order.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kittclouds/opinion/pkg/document"
)

// Entry is one stored document.
type Entry struct {
	ID      string // unique within the store; never contains a path separator
	Path    string
	Doc     *document.Document
	Version int64 // bumped on every Upsert
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*Entry
	order []string
}

// New creates an empty document store.
func New() *Store {
	return &Store{
		docs: make(map[string]*Entry),
	}
}

// Hydrate bulk-loads entries.
func (s *Store) Hydrate(entries []Entry) int {
	for _, e := range entries {
		s.Upsert(e.ID, e.Path, e.Doc)
	}
	return len(entries)
}

// Upsert adds or replaces a document.
func (s *Store) Upsert(id, path string, doc *document.Document) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.docs[id]
	if !ok {
		e = &Entry{ID: id}
		s.docs[id] = e
		s.order = append(s.order, id)
	}
	e.Path = path
	e.Doc = doc
	e.Version++
	return e
}

// LoadFile reads a JSON document, or raw text for .txt files, and stores it
// under the file's base name. Reloading the same path replaces its entry; a
// different path with a taken base name gets a numbered id ("review-2").
func (s *Store) LoadFile(path, lang string) (*Entry, error) {
	var (
		doc *document.Document
		err error
	)
	path = filepath.Clean(path)
	id := s.idFor(path)
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			doc, err = document.FromText(id, lang, string(data), nil)
		}
	} else {
		doc, err = document.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to load %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return s.Upsert(id, path, doc), nil
}

// idFor returns the entry id for path: the id already holding path, else the
// base name without extension, numbered when another path holds it.
func (s *Store) idFor(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := base
	for n := 2; ; n++ {
		e, taken := s.docs[id]
		if !taken || e.Path == path {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Remove deletes a document.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get retrieves a document entry by ID, or nil.
func (s *Store) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.docs[id]
}

// Count returns the number of documents in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}

// AllIDs returns all document IDs in load order.
func (s *Store) AllIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.order...)
}

// Clear removes all documents.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make(map[string]*Entry)
	s.order = nil
}
