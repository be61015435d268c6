package search

import (
	"testing"

	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndexes(t *testing.T, docs ...*core.Document) (*index.Store, *index.Inverted, *index.Vectors) {
	t.Helper()

	store := index.NewStore()
	inverted := index.NewInverted()
	vectors := index.NewVectors()

	for _, doc := range docs {
		require.NoError(t, store.Put(doc))
		tokens := index.Tokenize(doc.SearchableText())
		tokens = append(tokens, index.StemTokens(tokens)...)
		inverted.Add(doc.ID, tokens)
		if len(doc.Vector) > 0 {
			require.NoError(t, vectors.Upsert(doc.ID, doc.Vector))
		}
	}
	return store, inverted, vectors
}

func newTestSearcher(t *testing.T, docs ...*core.Document) *Searcher {
	t.Helper()
	s, err := NewSearcher(newTestIndexes(t, docs...))
	require.NoError(t, err)
	return s
}

func TestNewSearcher(t *testing.T) {
	store := index.NewStore()
	inverted := index.NewInverted()
	vectors := index.NewVectors()

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(store, inverted, vectors)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewSearcher(nil, inverted, vectors)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil inverted index", func(t *testing.T) {
		_, err := NewSearcher(store, nil, vectors)
		assert.Equal(t, ErrInvertedIndexRequired, err)
	})

	t.Run("nil vector index", func(t *testing.T) {
		_, err := NewSearcher(store, inverted, nil)
		assert.Equal(t, ErrVectorIndexRequired, err)
	})
}

func TestSearchExactPrecedence(t *testing.T) {
	exact := &core.Document{
		ID:          "exact",
		Title:       "Software Engineer",
		Description: "Build things",
	}
	loose := &core.Document{
		ID:          "loose",
		Title:       "Product Manager",
		Description: "Works with the software engineer daily",
	}
	s := newTestSearcher(t, exact, loose)

	hits := s.Search("software engineer", core.DefaultSearchOptions(), nil)
	require.Len(t, hits, 2)

	byID := make(map[string]*core.Hit, 2)
	for _, h := range hits {
		byID[h.Document.ID] = h
	}

	// A verbatim title match must outrank a document matched only by the
	// partial fallback and a description substring.
	assert.Greater(t, byID["exact"].Score, byID["loose"].Score)
	assert.Equal(t, core.MatchTypeExact, byID["exact"].MatchType)
}

func TestSearchFuzzyToggle(t *testing.T) {
	// Indexed without stem augmentation: "enginer" and "engineer" share a
	// stem, and the toggle behavior is only observable when the typo has no
	// partial-strategy overlap with the document.
	doc := &core.Document{ID: "e", Title: "Engineer"}
	store := index.NewStore()
	inverted := index.NewInverted()
	vectors := index.NewVectors()
	require.NoError(t, store.Put(doc))
	inverted.Add(doc.ID, index.Tokenize(doc.SearchableText()))
	s, err := NewSearcher(store, inverted, vectors)
	require.NoError(t, err)

	t.Run("one edit away matches when enabled", func(t *testing.T) {
		opts := core.DefaultSearchOptions()
		opts.EnableFuzzy = true
		hits := s.Search("enginer", opts, nil)
		require.Len(t, hits, 1)
		assert.Equal(t, core.MatchTypeFuzzy, hits[0].MatchType)
	})

	t.Run("no match when disabled", func(t *testing.T) {
		hits := s.Search("enginer", core.DefaultSearchOptions(), nil)
		assert.Empty(t, hits)
	})
}

func TestSearchSemantic(t *testing.T) {
	similar := &core.Document{ID: "sim", Title: "ML Role", Vector: []float32{0.9, 0.1, 0}}
	distant := &core.Document{ID: "far", Title: "Chef", Vector: []float32{0, 0, 1}}
	s := newTestSearcher(t, similar, distant)

	opts := core.DefaultSearchOptions()
	opts.EnableSemantic = true
	opts.QueryVector = []float32{1, 0, 0}

	hits := s.Search("unrelated words", opts, nil)

	var simHit *core.Hit
	for _, h := range hits {
		if h.Document.ID == "sim" {
			simHit = h
		}
	}
	require.NotNil(t, simHit)
	assert.Equal(t, core.MatchTypeSemantic, simHit.MatchType)

	t.Run("missing query vector is a no-op, not an error", func(t *testing.T) {
		opts := core.DefaultSearchOptions()
		opts.EnableSemantic = true
		hits := s.Search("unrelated words", opts, nil)
		assert.Empty(t, hits)
	})
}

func TestSearchAdditiveFusion(t *testing.T) {
	doc := &core.Document{
		ID:          "both",
		Title:       "Go Developer",
		Description: "Go developer position",
		Vector:      []float32{1, 0},
	}
	s := newTestSearcher(t, doc)

	lexical := s.Search("go developer", core.DefaultSearchOptions(), nil)
	require.Len(t, lexical, 1)

	opts := core.DefaultSearchOptions()
	opts.EnableSemantic = true
	opts.QueryVector = []float32{1, 0}
	fused := s.Search("go developer", opts, nil)
	require.Len(t, fused, 1)

	// Credit accumulates across strategies for the same document.
	assert.Greater(t, fused[0].Score, lexical[0].Score)
}

func TestSearchFilters(t *testing.T) {
	sf := &core.Document{
		ID:              "sf",
		Title:           "Backend Engineer",
		Location:        "San Francisco, CA",
		Salary:          "$150,000 - $180,000",
		ExperienceYears: 5,
		CompanySize:     "large",
	}
	remote := &core.Document{
		ID:              "remote",
		Title:           "Backend Engineer",
		Location:        "Remote",
		Salary:          "$90,000",
		ExperienceYears: 2,
		CompanySize:     "small",
	}
	s := newTestSearcher(t, sf, remote)

	run := func(filters map[string]string) []string {
		opts := core.DefaultSearchOptions()
		opts.Filters = filters
		hits := s.Search("backend engineer", opts, nil)
		ids := make([]string, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, h.Document.ID)
		}
		return ids
	}

	t.Run("location substring", func(t *testing.T) {
		assert.Equal(t, []string{"sf"}, run(map[string]string{"location": "san francisco"}))
	})

	t.Run("minimum salary", func(t *testing.T) {
		assert.Equal(t, []string{"sf"}, run(map[string]string{"minSalary": "120000"}))
	})

	t.Run("experience proximity allows one extra year", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"remote"}, run(map[string]string{"experienceYears": "1"}))
		assert.ElementsMatch(t, []string{"sf", "remote"}, run(map[string]string{"experienceYears": "4"}))
	})

	t.Run("company size equality", func(t *testing.T) {
		assert.Equal(t, []string{"remote"}, run(map[string]string{"companySize": "small"}))
	})

	t.Run("malformed numeric filter excludes nothing", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"sf", "remote"}, run(map[string]string{"minSalary": "lots"}))
	})

	t.Run("unknown key matches facet field", func(t *testing.T) {
		withFacet := &core.Document{
			ID:     "facet",
			Title:  "Backend Engineer",
			Facets: map[string]string{"team": "platform"},
		}
		s := newTestSearcher(t, withFacet, remote)
		opts := core.DefaultSearchOptions()
		opts.Filters = map[string]string{"team": "platform"}
		hits := s.Search("backend engineer", opts, nil)
		require.Len(t, hits, 1)
		assert.Equal(t, "facet", hits[0].Document.ID)
	})
}

func TestSearchMonitorHooks(t *testing.T) {
	s := newTestSearcher(t, &core.Document{ID: "a", Title: "Engineer"})

	monitor := &recordingMonitor{}
	s.Search("engineer", core.DefaultSearchOptions(), monitor)

	assert.True(t, monitor.started)
	assert.True(t, monitor.finished)
	assert.Equal(t, 1, monitor.filtered)
}

type recordingMonitor struct {
	started  bool
	finished bool
	filtered int
}

func (m *recordingMonitor) Start(_ string)                        { m.started = true }
func (m *recordingMonitor) AfterFilter(n int)                     { m.filtered = n }
func (m *recordingMonitor) AfterStrategy(_ core.MatchType, _ int) {}
func (m *recordingMonitor) Finish(_ []*core.Hit)                  { m.finished = true }

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 1, levenshteinDistance("engineer", "enginer"))
	assert.Equal(t, 0, levenshteinDistance("same", "same"))
	assert.Equal(t, 4, levenshteinDistance("", "four"))

	assert.InDelta(t, 0.875, similarity("engineer", "enginer"), 1e-9)
	assert.InDelta(t, 1.0, similarity("", ""), 1e-9)
}
