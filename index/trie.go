package index

import (
	"sort"
	"sync"
)

type trieNode struct {
	children map[rune]*trieNode
	terminal bool
	term     string // full term, set on terminal nodes
	freq     uint64 // times the term was inserted
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Trie is a prefix tree over normalized terms with per-terminal frequency
// counters. Prefix lookup costs O(prefix length + results), never O(corpus).
type Trie struct {
	mu   sync.RWMutex
	root *trieNode
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds term to the trie, bumping its frequency if already present.
func (t *Trie) Insert(term string) {
	t.InsertN(term, 1)
}

// InsertN adds term with a frequency increment of n. Used when restoring a
// snapshot, where counters are replayed in one step.
func (t *Trie) InsertN(term string, n uint64) {
	if term == "" || n == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, ch := range term {
		child, ok := node.children[ch]
		if !ok {
			child = newTrieNode()
			node.children[ch] = child
		}
		node = child
	}
	node.terminal = true
	node.term = term
	node.freq += n
}

// PrefixSearch walks to the prefix node and collects all terminal descendants,
// returning up to limit terms by descending frequency, ties broken
// lexicographically. A prefix with no node yields an empty slice.
func (t *Trie) PrefixSearch(prefix string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.root
	for _, ch := range prefix {
		child, ok := node.children[ch]
		if !ok {
			return nil
		}
		node = child
	}

	type candidate struct {
		term string
		freq uint64
	}
	var found []candidate
	var collect func(*trieNode)
	collect = func(n *trieNode) {
		if n.terminal {
			found = append(found, candidate{term: n.term, freq: n.freq})
		}
		for _, child := range n.children {
			collect(child)
		}
	}
	collect(node)

	sort.Slice(found, func(i, j int) bool {
		if found[i].freq != found[j].freq {
			return found[i].freq > found[j].freq
		}
		return found[i].term < found[j].term
	})
	if len(found) > limit {
		found = found[:limit]
	}

	terms := make([]string, len(found))
	for i, c := range found {
		terms[i] = c.term
	}
	return terms
}

// Terms invokes fn for every terminal node with its frequency. Used for
// snapshotting the trie as a flat (term, freq) list.
func (t *Trie) Terms(fn func(term string, freq uint64)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var walk func(*trieNode)
	walk = func(n *trieNode) {
		if n.terminal {
			fn(n.term, n.freq)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
}
