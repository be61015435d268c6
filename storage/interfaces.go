package storage

import (
	"context"
	"time"

	"github.com/poiesic/seeker/core"
)

// Snapshot is the durable image of the engine's state: the document corpus
// (with vectors), the suggestion-trie frequencies, and the history tracker.
// The inverted and vector indices are not stored; they are rebuilt from the
// documents on load.
type Snapshot struct {
	Documents     []core.Document
	TrieEntries   []TrieEntry
	History       []HistoryEntry
	Popularity    map[string]uint64
	TotalSearches uint64
	TotalLatency  time.Duration
	CreatedAt     time.Time
}

// TrieEntry is one terminal trie node: a complete term and its frequency.
type TrieEntry struct {
	Term string
	Freq uint64
}

// HistoryEntry is one executed query in the recent-query log.
type HistoryEntry struct {
	Query       string
	Timestamp   time.Time
	ResultCount int
}

// SnapshotStore persists engine snapshots across restarts.
// Implementations must be thread-safe.
type SnapshotStore interface {
	// LoadSnapshot retrieves the most recently saved snapshot.
	// Returns ErrNotFound if nothing has been saved yet.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// SaveSnapshot persists the snapshot, replacing any previous one.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// Close closes the storage backend and releases resources.
	Close() error
}
