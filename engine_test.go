package seeker

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocuments() []*core.Document {
	return []*core.Document{
		{
			ID:              "job-1",
			Title:           "Senior Go Engineer",
			Company:         "Acme",
			Location:        "Remote",
			Description:     "Build search infrastructure in Go",
			Requirements:    []string{"golang", "distributed systems"},
			ExperienceYears: 5,
			CompanySize:     "medium",
			PostedAt:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			Vector:          []float32{1, 0, 0},
		},
		{
			ID:          "job-2",
			Title:       "Product Designer",
			Company:     "Beta",
			Location:    "Berlin",
			Description: "Design delightful products",
			PostedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Vector:      []float32{0, 1, 0},
		},
		{
			ID:          "job-3",
			Title:       "Staff Engineer",
			Company:     "Acme",
			Location:    "Remote",
			Description: "Lead platform engineering",
			PostedAt:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Vector:      []float32{0.9, 0.1, 0},
		},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	for _, doc := range testDocuments() {
		require.NoError(t, e.Index(doc))
	}
	return e
}

func hitIDs(result *core.SearchResult) []string {
	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.Document.ID)
	}
	return ids
}

func TestEngineSearch(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"job-1", "job-3"}, hitIDs(result))
	assert.Equal(t, 2, result.TotalHits)
}

func TestEngineIdempotentIndexing(t *testing.T) {
	e := newTestEngine(t)

	before, err := e.Search("engineer", nil)
	require.NoError(t, err)

	// Re-index the same document with identical content.
	require.NoError(t, e.Index(testDocuments()[0]))

	after, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, before.TotalHits, after.TotalHits)
	assert.Equal(t, hitIDs(before), hitIDs(after))
}

func TestEngineReindexReplacesTerms(t *testing.T) {
	e := newTestEngine(t)

	replaced := testDocuments()[0]
	replaced.Title = "Bartender"
	replaced.Description = "Mix drinks"
	replaced.Requirements = nil
	require.NoError(t, e.Index(replaced))

	result, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(result), "job-1", "stale terms should be retracted on re-index")

	result, err = e.Search("bartender", nil)
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "job-1")
}

func TestEngineRemove(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Remove("job-2"))

	// "designer" occurs only in job-2.
	result, err := e.Search("designer", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, e.Remove("missing"), core.ErrDocumentNotFound)
	})
}

func TestEngineShortQuery(t *testing.T) {
	e := newTestEngine(t, WithMinQueryLength(2))

	result, err := e.Search("x", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Zero(t, result.TotalHits)
	assert.Equal(t, 10, result.HitsPerPage, "the envelope is still well-formed")
}

func TestEngineInvalidOptions(t *testing.T) {
	e := newTestEngine(t)

	opts := core.DefaultSearchOptions()
	opts.HitsPerPage = 0
	_, err := e.Search("engineer", opts)
	assert.ErrorIs(t, err, core.ErrInvalidOptions)
}

func TestEngineCacheTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	e := newTestEngine(t,
		WithClock(func() time.Time { return now }),
		WithCacheTTL(time.Minute),
	)

	first, err := e.Search("engineer", nil)
	require.NoError(t, err)

	// Within the TTL the same envelope is served back.
	second, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Past the TTL the search recomputes.
	now = now.Add(2 * time.Minute)
	third, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, hitIDs(first), hitIDs(third))
}

func TestEngineCacheInvalidatedByMutation(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Search("engineer", nil)
	require.NoError(t, err)
	require.Equal(t, 2, first.TotalHits)

	require.NoError(t, e.Index(&core.Document{ID: "job-4", Title: "Engineer"}))

	second, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, second.TotalHits, "index mutation must not serve stale cached results")
}

func TestEnginePagination(t *testing.T) {
	e := newTestEngine(t)

	opts := core.DefaultSearchOptions()
	opts.HitsPerPage = 1
	page0, err := e.Search("engineer", opts)
	require.NoError(t, err)

	opts = core.DefaultSearchOptions()
	opts.HitsPerPage = 1
	opts.Page = 1
	page1, err := e.Search("engineer", opts)
	require.NoError(t, err)

	require.Len(t, page0.Hits, 1)
	require.Len(t, page1.Hits, 1)
	assert.NotEqual(t, page0.Hits[0].Document.ID, page1.Hits[0].Document.ID)
	assert.Equal(t, 2, page0.TotalHits)
	assert.Equal(t, 2, page1.TotalHits)
}

func TestEngineSuggestDebounce(t *testing.T) {
	e := newTestEngine(t, WithDebounceWindow(20*time.Millisecond))

	first := e.Suggest("e")
	second := e.Suggest("en")
	third := e.Suggest("eng")

	_, ok := <-first
	assert.False(t, ok, "superseded call must not resolve")
	_, ok = <-second
	assert.False(t, ok, "superseded call must not resolve")

	suggestions, ok := <-third
	require.True(t, ok)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, core.SuggestionSourcePrefix, suggestions[0].Source)
	assert.Equal(t, "engineer", suggestions[0].Term)
}

func TestEngineSuggestEmptyQuery(t *testing.T) {
	e := newTestEngine(t, WithDebounceWindow(time.Millisecond))

	_, err := e.Search("engineer", nil)
	require.NoError(t, err)
	_, err = e.Search("designer", nil)
	require.NoError(t, err)

	suggestions, ok := <-e.Suggest("")
	require.True(t, ok)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, core.SuggestionSourcePopular, suggestions[0].Source)
}

func TestEngineAnalytics(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Search("engineer", nil)
	require.NoError(t, err)
	_, err = e.Search("engineer", nil) // cache hit, not recorded
	require.NoError(t, err)
	_, err = e.Search("designer", nil)
	require.NoError(t, err)

	analytics := e.Analytics()
	assert.Equal(t, uint64(2), analytics.TotalSearches)
	assert.Equal(t, 3, analytics.IndexSize)
	require.NotEmpty(t, analytics.PopularQueries)
	assert.Equal(t, uint64(1), analytics.PopularQueries[0].Count)
}

func TestEngineSnapshotRoundTrip(t *testing.T) {
	store, err := badger.NewSnapshotStore("", true)
	require.NoError(t, err)
	defer store.Close()

	before, err := New(WithSnapshotStore(store))
	require.NoError(t, err)
	for _, doc := range testDocuments() {
		require.NoError(t, before.Index(doc))
	}
	want, err := before.Search("engineer", nil)
	require.NoError(t, err)
	require.NoError(t, before.SaveSnapshot(context.Background()))

	after, err := New(WithSnapshotStore(store))
	require.NoError(t, err)
	got, err := after.Search("engineer", nil)
	require.NoError(t, err)

	assert.Equal(t, hitIDs(want), hitIDs(got))
	assert.Equal(t, want.TotalHits, got.TotalHits)
	for i := range want.Hits {
		assert.Equal(t, want.Hits[i].Score, got.Hits[i].Score)
		assert.Equal(t, want.Hits[i].MatchType, got.Hits[i].MatchType)
	}

	t.Run("trie frequencies survive", func(t *testing.T) {
		restored, err := New(WithSnapshotStore(store), WithDebounceWindow(time.Millisecond))
		require.NoError(t, err)
		suggestions, ok := <-restored.Suggest("eng")
		require.True(t, ok)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "engineer", suggestions[0].Term)
	})
}

func TestEngineSemanticSearch(t *testing.T) {
	e := newTestEngine(t)

	opts := core.DefaultSearchOptions()
	opts.EnableSemantic = true
	opts.QueryVector = []float32{1, 0, 0}
	result, err := e.Search("infrastructure role", opts)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "job-1", result.Hits[0].Document.ID)
}

func TestEngineVectorDimensionMismatch(t *testing.T) {
	e := newTestEngine(t)

	bad := &core.Document{ID: "job-9", Title: "Oddball", Vector: []float32{1, 2}}
	err := e.Index(bad)
	require.ErrorIs(t, err, core.ErrDimensionMismatch)

	// The failed index call must not have corrupted existing state.
	result, err := e.Search("engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalHits)
	_, err = e.store.Get("job-9")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
}
