package index

import (
	"sync"

	"github.com/poiesic/seeker/core"
)

// Store holds canonical documents. It is the leaf dependency of every other
// index structure: postings, vectors, and trie entries are all derived from
// what is stored here.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*core.Document
	// ids preserves insertion order so iteration is deterministic.
	ids []string
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*core.Document)}
}

// Put inserts or replaces a document. The input is cloned so later caller
// mutations cannot corrupt stored state.
func (s *Store) Put(doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.ids = append(s.ids, doc.ID)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

// Get retrieves a document by id. Returns core.ErrDocumentNotFound when absent.
func (s *Store) Get(id string) (*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, core.ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes a document by id. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// All returns the stored documents in insertion order.
func (s *Store) All() []*core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*core.Document, 0, len(s.ids))
	for _, id := range s.ids {
		docs = append(docs, s.docs[id])
	}
	return docs
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
