package index

import "sync"

// Inverted maps normalized terms to the set of document ids containing them.
// A per-document term list is kept alongside the postings so removal costs
// O(doc terms) instead of a scan over every posting set.
type Inverted struct {
	mu       sync.RWMutex
	postings map[string]map[string]bool // term -> docID set
	docTerms map[string][]string        // docID -> terms added for it
}

// NewInverted creates an empty inverted index.
func NewInverted() *Inverted {
	return &Inverted{
		postings: make(map[string]map[string]bool),
		docTerms: make(map[string][]string),
	}
}

// Add records that id contains each of the given tokens. Calling Add for an
// id that is already indexed replaces its previous terms.
func (ix *Inverted) Add(id string, tokens []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(id)

	seen := make(map[string]bool, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)

		set, ok := ix.postings[tok]
		if !ok {
			set = make(map[string]bool)
			ix.postings[tok] = set
		}
		set[id] = true
	}
	ix.docTerms[id] = terms
}

// Remove retracts id from every posting set containing it. Posting sets left
// empty are pruned.
func (ix *Inverted) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *Inverted) removeLocked(id string) {
	for _, term := range ix.docTerms[id] {
		set := ix.postings[term]
		delete(set, id)
		if len(set) == 0 {
			delete(ix.postings, term)
		}
	}
	delete(ix.docTerms, id)
}

// Lookup returns the ids posted under token. Unknown tokens yield an empty
// slice, never an error.
func (ix *Inverted) Lookup(token string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	set := ix.postings[token]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether id is posted under token.
func (ix *Inverted) Contains(token, id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.postings[token][id]
}

// DocTerms returns the terms recorded for id at Add time.
func (ix *Inverted) DocTerms(id string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]string(nil), ix.docTerms[id]...)
}

// TermCount returns the number of distinct indexed terms.
func (ix *Inverted) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.postings)
}
