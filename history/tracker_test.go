package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/seeker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecord(t *testing.T) {
	tr := NewTracker()

	tr.Record("Engineer", 3, 2*time.Millisecond)
	tr.Record("engineer", 3, 4*time.Millisecond)
	tr.Record("designer", 1, 6*time.Millisecond)

	t.Run("popularity folds casing", func(t *testing.T) {
		popular := tr.Popular(10)
		require.Len(t, popular, 2)
		assert.Equal(t, core.QueryCount{Query: "engineer", Count: 2}, popular[0])
		assert.Equal(t, core.QueryCount{Query: "designer", Count: 1}, popular[1])
	})

	t.Run("stats average latency", func(t *testing.T) {
		total, avg, popular := tr.Stats(1)
		assert.Equal(t, uint64(3), total)
		assert.Equal(t, 4*time.Millisecond, avg)
		require.Len(t, popular, 1)
		assert.Equal(t, "engineer", popular[0].Query)
	})

	t.Run("empty query is ignored", func(t *testing.T) {
		tr.Record("   ", 0, time.Millisecond)
		total, _, _ := tr.Stats(0)
		assert.Equal(t, uint64(3), total)
	})
}

func TestTrackerRecent(t *testing.T) {
	tr := NewTracker()
	tr.Record("first", 1, 0)
	tr.Record("second", 1, 0)
	tr.Record("first", 1, 0)

	// Newest first, distinct.
	assert.Equal(t, []string{"first", "second"}, tr.Recent(10))
	assert.Equal(t, []string{"first"}, tr.Recent(1))
}

func TestTrackerMatchingPrefix(t *testing.T) {
	tr := NewTracker()
	tr.Record("golang engineer", 1, 0)
	tr.Record("go developer", 1, 0)
	tr.Record("rust developer", 1, 0)

	assert.Equal(t, []string{"go developer", "golang engineer"}, tr.MatchingPrefix("go", 10))
	assert.Empty(t, tr.MatchingPrefix("zig", 10))
}

func TestTrackerHistoryBound(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < maxEntries+50; i++ {
		tr.Record(fmt.Sprintf("query-%d", i), 0, 0)
	}

	entries := tr.Entries()
	require.Len(t, entries, maxEntries)
	// Oldest entries dropped first.
	assert.Equal(t, "query-50", entries[0].Query)
	assert.Equal(t, fmt.Sprintf("query-%d", maxEntries+49), entries[len(entries)-1].Query)
}

func TestTrackerPopularTieOrdering(t *testing.T) {
	tr := NewTracker()
	tr.Record("zeta", 1, 0)
	tr.Record("alpha", 1, 0)

	popular := tr.Popular(10)
	require.Len(t, popular, 2)
	assert.Equal(t, "alpha", popular[0].Query)
	assert.Equal(t, "zeta", popular[1].Query)
}

func TestTrackerRestore(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tr := NewTracker(WithClock(func() time.Time { return now }))
	tr.Record("original", 1, time.Millisecond)

	entries := []Entry{{Query: "restored", Timestamp: now, ResultCount: 2}}
	tr.Restore(entries, map[string]uint64{"restored": 7}, 7, 7*time.Millisecond)

	assert.Equal(t, []string{"restored"}, tr.Recent(10))
	total, avg, popular := tr.Stats(10)
	assert.Equal(t, uint64(7), total)
	assert.Equal(t, time.Millisecond, avg)
	require.Len(t, popular, 1)
	assert.Equal(t, uint64(7), popular[0].Count)
}
