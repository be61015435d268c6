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

// Package history records executed queries, popularity counters, and latency
// statistics. Its data feeds suggestion ranking and diagnostics, never the
// correctness of search results.
package history

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/seeker/core"
)

const (
	// maxEntries bounds the recent-query log.
	maxEntries = 1000
	// maxLatencySamples bounds the latency trend log.
	maxLatencySamples = 5000
)

// Entry is one executed query.
type Entry struct {
	Query       string
	Timestamp   time.Time
	ResultCount int
}

// Tracker accumulates query history, per-query popularity, and latency
// statistics. Safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	entries    []Entry
	popularity map[string]uint64

	totalSearches uint64
	totalLatency  time.Duration
	latencyTrend  []time.Duration

	now func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock injects the time source used for entry timestamps. Intended for
// tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		popularity: make(map[string]uint64),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record logs one executed query with its result count and latency. The
// query is normalized so popularity counting does not fragment on casing.
func (t *Tracker) Record(query string, resultCount int, latency time.Duration) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, Entry{
		Query:       query,
		Timestamp:   t.now(),
		ResultCount: resultCount,
	})
	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}

	t.popularity[query]++
	t.totalSearches++
	t.totalLatency += latency

	t.latencyTrend = append(t.latencyTrend, latency)
	if len(t.latencyTrend) > maxLatencySamples {
		t.latencyTrend = t.latencyTrend[len(t.latencyTrend)-maxLatencySamples:]
	}
}

// Recent returns up to limit most recent distinct queries, newest first.
func (t *Tracker) Recent(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, limit)
	out := make([]string, 0, limit)
	for i := len(t.entries) - 1; i >= 0 && len(out) < limit; i-- {
		q := t.entries[i].Query
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

// MatchingPrefix returns up to limit distinct historical queries starting
// with prefix, newest first.
func (t *Tracker) MatchingPrefix(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, limit)
	out := make([]string, 0, limit)
	for i := len(t.entries) - 1; i >= 0 && len(out) < limit; i-- {
		q := t.entries[i].Query
		if seen[q] || !strings.HasPrefix(q, prefix) {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

// Popular returns up to limit queries ordered by descending popularity,
// lexicographic on ties so the ordering is deterministic.
func (t *Tracker) Popular(limit int) []core.QueryCount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.popularLocked(limit)
}

func (t *Tracker) popularLocked(limit int) []core.QueryCount {
	counts := make([]core.QueryCount, 0, len(t.popularity))
	for q, c := range t.popularity {
		counts = append(counts, core.QueryCount{Query: q, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Query < counts[j].Query
	})
	if limit < len(counts) {
		counts = counts[:limit]
	}
	return counts
}

// Stats returns the aggregate counters used to populate the engine's
// analytics snapshot.
func (t *Tracker) Stats(popularLimit int) (total uint64, avg time.Duration, popular []core.QueryCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.totalSearches > 0 {
		avg = t.totalLatency / time.Duration(t.totalSearches)
	}
	return t.totalSearches, avg, t.popularLocked(popularLimit)
}

// Entries returns a copy of the recent-query log, oldest first. Used by the
// snapshot serializer.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Popularity returns a copy of the popularity counters. Used by the snapshot
// serializer.
func (t *Tracker) Popularity() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]uint64, len(t.popularity))
	for q, c := range t.popularity {
		out[q] = c
	}
	return out
}

// Restore replaces the tracker's state from a snapshot.
func (t *Tracker) Restore(entries []Entry, popularity map[string]uint64, totalSearches uint64, totalLatency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries[:0], entries...)
	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}
	t.popularity = make(map[string]uint64, len(popularity))
	for q, c := range popularity {
		t.popularity[q] = c
	}
	t.totalSearches = totalSearches
	t.totalLatency = totalLatency
	t.latencyTrend = t.latencyTrend[:0]
}

// Totals returns the aggregate search count and summed latency. Used by the
// snapshot serializer.
func (t *Tracker) Totals() (uint64, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalSearches, t.totalLatency
}
