// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package seeker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/seeker/cache"
	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/history"
	"github.com/poiesic/seeker/index"
	"github.com/poiesic/seeker/search"
	"github.com/poiesic/seeker/storage"
)

var (
	// ErrSnapshotStoreRequired is returned by SaveSnapshot when the engine
	// was created without a snapshot store.
	ErrSnapshotStoreRequired = errors.New("snapshot store required")

	// ErrSnapshotSave wraps failures while persisting a snapshot.
	ErrSnapshotSave = errors.New("failed to save snapshot")
)

const (
	// DefaultMinQueryLength is the shortest query the engine will run.
	// Anything shorter returns an empty, well-formed result.
	DefaultMinQueryLength = 1

	maxSuggestions = 10
	popularLimit   = 10

	// suggestChannel is the debounce channel for the single caller stream
	// the engine is designed around.
	suggestChannel = "suggest"
)

// Engine is the search facade: it owns the document store, the three indices,
// the response cache, and the history tracker, and exposes the public
// index/remove/search/suggest contract.
//
// Re-indexing an id replaces its stored document, postings, and vector, but
// suggestion-trie frequencies are additive and are never pruned; only the
// corpus-derived state is replaced.
type Engine struct {
	// mu serializes index mutation. Reads go through the per-structure
	// read locks, so searches run concurrently with each other.
	mu sync.Mutex

	store    *index.Store
	inverted *index.Inverted
	vectors  *index.Vectors
	trie     *index.Trie

	searcher  *search.Searcher
	results   *cache.ResultCache
	debouncer *cache.Debouncer[[]*core.Suggestion]
	tracker   *history.Tracker

	snapshots      storage.SnapshotStore
	monitor        search.SearchMonitor
	minQueryLength int
	now            func() time.Time
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger         *slog.Logger
	snapshots      storage.SnapshotStore
	monitor        search.SearchMonitor
	now            func() time.Time
	minQueryLength int
	debounceWindow time.Duration
	cacheTTL       time.Duration
	cacheCapacity  int
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSnapshotStore attaches a durable store. The engine loads the latest
// snapshot on startup and saves one on Close.
func WithSnapshotStore(store storage.SnapshotStore) Option {
	return func(o *engineOptions) {
		o.snapshots = store
	}
}

// WithMonitor attaches a SearchMonitor observing every search.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// WithClock injects the time source used for cache TTLs, history timestamps,
// and processing times. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMinQueryLength overrides the minimum query length.
func WithMinQueryLength(n int) Option {
	return func(o *engineOptions) {
		if n > 0 {
			o.minQueryLength = n
		}
	}
}

// WithDebounceWindow overrides the suggestion debounce window.
func WithDebounceWindow(window time.Duration) Option {
	return func(o *engineOptions) {
		o.debounceWindow = window
	}
}

// WithCacheTTL overrides the result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *engineOptions) {
		o.cacheTTL = ttl
	}
}

// WithCacheCapacity overrides the result cache capacity.
func WithCacheCapacity(capacity int) Option {
	return func(o *engineOptions) {
		o.cacheCapacity = capacity
	}
}

// New creates an engine. With a snapshot store attached it restores the
// previous snapshot if one exists; a load failure is logged and the engine
// starts fresh rather than failing.
func New(opts ...Option) (*Engine, error) {
	o := &engineOptions{
		logger:         slog.Default(),
		now:            time.Now,
		minQueryLength: DefaultMinQueryLength,
		debounceWindow: cache.DefaultDebounceWindow,
		cacheTTL:       cache.DefaultTTL,
		cacheCapacity:  cache.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}

	store := index.NewStore()
	inverted := index.NewInverted()
	vectors := index.NewVectors()

	searcher, err := search.NewSearcher(store, inverted, vectors, search.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	results, err := cache.NewResultCache(
		cache.WithTTL(o.cacheTTL),
		cache.WithCapacity(o.cacheCapacity),
		cache.WithClock(o.now),
		cache.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:          store,
		inverted:       inverted,
		vectors:        vectors,
		trie:           index.NewTrie(),
		searcher:       searcher,
		results:        results,
		debouncer:      cache.NewDebouncer[[]*core.Suggestion](o.debounceWindow),
		tracker:        history.NewTracker(history.WithClock(o.now)),
		snapshots:      o.snapshots,
		monitor:        o.monitor,
		minQueryLength: o.minQueryLength,
		now:            o.now,
		logger:         o.logger,
	}

	if e.snapshots != nil {
		snap, err := e.snapshots.LoadSnapshot(context.Background())
		switch {
		case errors.Is(err, storage.ErrNotFound):
			e.logger.Info("no snapshot found, starting fresh")
		case err != nil:
			e.logger.Warn("failed to load snapshot, starting fresh", "err", err)
		default:
			e.restore(snap)
		}
	}

	return e, nil
}

// Index adds or replaces a document. The update is atomic per document: a
// failure (missing id, vector dimension mismatch) leaves previously indexed
// state untouched.
func (e *Engine) Index(doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.indexLocked(doc); err != nil {
		return err
	}
	e.indexSuggestionsLocked(doc)
	e.results.Invalidate()
	return nil
}

// indexLocked updates the store, postings, and vector for doc. The vector
// goes first: a dimension mismatch must fail before any state changes.
func (e *Engine) indexLocked(doc *core.Document) error {
	if len(doc.Vector) > 0 {
		if err := e.vectors.Upsert(doc.ID, doc.Vector); err != nil {
			return err
		}
	} else {
		e.vectors.Remove(doc.ID)
	}

	if err := e.store.Put(doc); err != nil {
		return err
	}

	tokens := index.Tokenize(doc.SearchableText())
	terms := append(tokens, index.StemTokens(tokens)...)
	e.inverted.Add(doc.ID, terms)
	return nil
}

// indexSuggestionsLocked feeds the trie from the title and the keyword tags.
// Frequencies are additive across re-indexing; see the Engine doc comment.
func (e *Engine) indexSuggestionsLocked(doc *core.Document) {
	for _, token := range index.Tokenize(doc.Title) {
		e.trie.Insert(token)
	}
	tags := make([]string, 0, len(doc.Requirements)+len(doc.Benefits))
	tags = append(tags, doc.Requirements...)
	tags = append(tags, doc.Benefits...)
	for _, tag := range tags {
		if term := strings.Join(index.Tokenize(tag), " "); term != "" {
			e.trie.Insert(term)
		}
	}
}

// Remove deletes a document and every posting and vector derived from it.
// Returns core.ErrDocumentNotFound for an unknown id.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.Get(id); err != nil {
		return err
	}
	e.store.Delete(id)
	e.inverted.Remove(id)
	e.vectors.Remove(id)
	e.results.Invalidate()
	return nil
}

// Search runs the full query path: cache lookup, strategy matching, result
// pipeline, cache store, history record. A query shorter than the minimum
// length returns an empty, well-formed result rather than an error.
func (e *Engine) Search(query string, opts *core.SearchOptions) (*core.SearchResult, error) {
	start := e.now()

	if opts == nil {
		opts = core.DefaultSearchOptions()
	}
	if err := core.ValidateSearchOptions(opts); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < e.minQueryLength {
		return &core.SearchResult{
			Query:          query,
			Hits:           []*core.Hit{},
			Page:           opts.Page,
			HitsPerPage:    opts.HitsPerPage,
			ProcessingTime: e.now().Sub(start),
		}, nil
	}

	key := cache.Key(query, opts)
	if cached, ok := e.results.Get(key); ok {
		e.logger.Debug("serving search from cache", "query", trimmed)
		return cached, nil
	}

	hits := e.searcher.Search(query, opts, e.monitor)
	result := search.BuildResult(query, hits, opts)
	result.ProcessingTime = e.now().Sub(start)

	e.results.Put(key, result)
	e.tracker.Record(trimmed, result.TotalHits, result.ProcessingTime)

	e.logger.Debug("search executed",
		"query", trimmed,
		"hits", result.TotalHits,
		"duration", result.ProcessingTime)
	return result, nil
}

// Suggest schedules a debounced suggestion lookup. The returned channel
// yields the merged suggestions once the debounce window quiesces; it is
// closed without a value if a later Suggest call supersedes this one.
func (e *Engine) Suggest(query string) <-chan []*core.Suggestion {
	return e.debouncer.Trigger(suggestChannel, func() []*core.Suggestion {
		return e.suggestions(query)
	})
}

// suggestions merges trie prefix matches with history-derived ones. An empty
// query falls back to popular and recent queries.
func (e *Engine) suggestions(query string) []*core.Suggestion {
	normalized := strings.ToLower(strings.TrimSpace(query))

	out := make([]*core.Suggestion, 0, maxSuggestions)
	seen := make(map[string]bool, maxSuggestions)
	add := func(term string, source core.SuggestionSource) {
		if len(out) >= maxSuggestions || seen[term] {
			return
		}
		seen[term] = true
		out = append(out, &core.Suggestion{Term: term, Source: source})
	}

	if normalized == "" {
		for _, qc := range e.tracker.Popular(maxSuggestions) {
			add(qc.Query, core.SuggestionSourcePopular)
		}
		for _, q := range e.tracker.Recent(maxSuggestions) {
			add(q, core.SuggestionSourceHistory)
		}
		return out
	}

	for _, term := range e.trie.PrefixSearch(normalized, maxSuggestions) {
		add(term, core.SuggestionSourcePrefix)
	}
	for _, q := range e.tracker.MatchingPrefix(normalized, maxSuggestions) {
		add(q, core.SuggestionSourceHistory)
	}
	return out
}

// Analytics returns the read-only diagnostics snapshot.
func (e *Engine) Analytics() *core.Analytics {
	total, avg, popular := e.tracker.Stats(popularLimit)
	return &core.Analytics{
		TotalSearches:   total,
		AvgResponseTime: avg,
		PopularQueries:  popular,
		IndexSize:       e.store.Len(),
	}
}

// SaveSnapshot persists the engine's full state to the attached store.
func (e *Engine) SaveSnapshot(ctx context.Context) error {
	if e.snapshots == nil {
		return ErrSnapshotStoreRequired
	}

	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotSave, err)
	}
	return nil
}

func (e *Engine) snapshotLocked() *storage.Snapshot {
	snap := &storage.Snapshot{}

	for _, doc := range e.store.All() {
		snap.Documents = append(snap.Documents, *doc)
	}
	e.trie.Terms(func(term string, freq uint64) {
		snap.TrieEntries = append(snap.TrieEntries, storage.TrieEntry{Term: term, Freq: freq})
	})
	for _, entry := range e.tracker.Entries() {
		snap.History = append(snap.History, storage.HistoryEntry{
			Query:       entry.Query,
			Timestamp:   entry.Timestamp,
			ResultCount: entry.ResultCount,
		})
	}
	snap.Popularity = e.tracker.Popularity()
	snap.TotalSearches, snap.TotalLatency = e.tracker.Totals()
	return snap
}

// restore rebuilds the in-memory state from a snapshot. Postings and vectors
// are rebuilt from the documents; the trie and tracker are restored from
// their own sections.
func (e *Engine) restore(snap *storage.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range snap.Documents {
		doc := snap.Documents[i]
		if err := e.indexLocked(&doc); err != nil {
			e.logger.Warn("skipping snapshot document", "id", doc.ID, "err", err)
		}
	}
	for _, entry := range snap.TrieEntries {
		e.trie.InsertN(entry.Term, entry.Freq)
	}

	entries := make([]history.Entry, 0, len(snap.History))
	for _, h := range snap.History {
		entries = append(entries, history.Entry{
			Query:       h.Query,
			Timestamp:   h.Timestamp,
			ResultCount: h.ResultCount,
		})
	}
	e.tracker.Restore(entries, snap.Popularity, snap.TotalSearches, snap.TotalLatency)

	e.logger.Info("restored snapshot",
		"documents", len(snap.Documents),
		"terms", len(snap.TrieEntries),
		"created_at", snap.CreatedAt)
}

// Close cancels pending suggestions, saves a final snapshot when a store is
// attached, and closes the store.
func (e *Engine) Close() error {
	e.debouncer.Close()

	if e.snapshots == nil {
		return nil
	}
	if err := e.SaveSnapshot(context.Background()); err != nil {
		e.logger.Error("error saving snapshot on close", "err", err)
	}
	return e.snapshots.Close()
}
