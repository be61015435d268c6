package search

import (
	"log/slog"
	"strings"

	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/index"
)

// Strategy scoring tunables. The ranking behavior of the engine is defined by
// these constants; change them and every relevance test changes with them.
const (
	// ScoreExactField is awarded when a field equals the full query.
	ScoreExactField = 100.0
	// ScoreFieldContains is awarded when a field contains the query as a substring.
	ScoreFieldContains = 50.0
	// ScoreTagOverlap is awarded per tag entry that contains the query or is
	// contained by it.
	ScoreTagOverlap = 20.0
	// ScoreMatchedFieldBonus is awarded once per matched field.
	ScoreMatchedFieldBonus = 10.0

	// FuzzyScale weights fuzzy matches below exact matches.
	FuzzyScale = 0.8
	// FuzzySimilarityThreshold discards fuzzy candidates with a lower average
	// normalized Levenshtein similarity.
	FuzzySimilarityThreshold = 0.3

	// PartialScale weights the per-token fallback credit.
	PartialScale = 0.5
	// PartialThreshold discards partial candidates whose matched-token ratio
	// is lower.
	PartialThreshold = 0.1
)

// Searcher runs the four matching strategies (exact, fuzzy, semantic,
// partial) against the indices and fuses their scores. A document matched by
// several strategies accumulates credit from each.
type Searcher struct {
	store    *index.Store
	inverted *index.Inverted
	vectors  *index.Vectors
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given index structures.
func NewSearcher(store *index.Store, inverted *index.Inverted, vectors *index.Vectors, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if inverted == nil {
		return nil, ErrInvertedIndexRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}

	s := &Searcher{
		store:    store,
		inverted: inverted,
		vectors:  vectors,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// candidate accumulates per-strategy scores for one document.
type candidate struct {
	doc    *core.Document
	scores map[core.MatchType]float64
}

// Search runs all enabled strategies for the normalized query and returns
// unsorted fused hits. Sorting, pagination, and highlighting are the result
// pipeline's concern.
func (s *Searcher) Search(query string, opts *core.SearchOptions, monitor SearchMonitor) []*core.Hit {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	query = strings.ToLower(strings.TrimSpace(query))
	queryTokens := index.Tokenize(query)

	// Facet filtering happens before any scoring: filtered-out documents
	// never enter a strategy's candidate set.
	docs := make([]*core.Document, 0, s.store.Len())
	for _, doc := range s.store.All() {
		if matchesFilters(doc, opts.Filters, s.logger) {
			docs = append(docs, doc)
		}
	}
	monitor.AfterFilter(len(docs))

	candidates := make(map[string]*candidate, len(docs))
	credit := func(doc *core.Document, mt core.MatchType, score float64) {
		c, ok := candidates[doc.ID]
		if !ok {
			c = &candidate{doc: doc, scores: make(map[core.MatchType]float64, 4)}
			candidates[doc.ID] = c
		}
		c.scores[mt] += score
	}

	// 1. Exact: substring-based, deterministic, always runs first.
	exactHits := 0
	for _, doc := range docs {
		if score := exactScore(doc, query); score > 0 {
			credit(doc, core.MatchTypeExact, score)
			exactHits++
		}
	}
	monitor.AfterStrategy(core.MatchTypeExact, exactHits)

	// 2. Fuzzy: edit-distance similarity, only when toggled on.
	if opts.EnableFuzzy {
		fuzzyHits := 0
		for _, doc := range docs {
			if score, ok := fuzzyScore(doc, queryTokens); ok {
				credit(doc, core.MatchTypeFuzzy, score)
				fuzzyHits++
			}
		}
		monitor.AfterStrategy(core.MatchTypeFuzzy, fuzzyHits)
	}

	// 3. Semantic: delegates to the vector index. No query vector means the
	// strategy is a no-op, not an error.
	if opts.EnableSemantic && len(opts.QueryVector) > 0 {
		allowed := make(map[string]*core.Document, len(docs))
		for _, doc := range docs {
			allowed[doc.ID] = doc
		}
		semanticHits := 0
		for _, match := range s.vectors.TopK(opts.QueryVector, s.vectors.Len()) {
			doc, ok := allowed[match.ID]
			if !ok || match.Score <= 0 {
				continue
			}
			credit(doc, core.MatchTypeSemantic, match.Score)
			semanticHits++
		}
		monitor.AfterStrategy(core.MatchTypeSemantic, semanticHits)
	}

	// 4. Partial: the catch-all so a query with no other hits still surfaces
	// loosely related documents. Posting sets are combined by union; a
	// document earns credit per query token posted for it.
	partialHits := 0
	if len(queryTokens) > 0 {
		matchedTokens := make(map[string]int, len(docs))
		for _, qt := range queryTokens {
			posted := make(map[string]bool)
			for _, id := range s.inverted.Lookup(qt) {
				posted[id] = true
			}
			for _, id := range s.inverted.Lookup(stemToken(qt)) {
				posted[id] = true
			}
			for id := range posted {
				matchedTokens[id]++
			}
		}
		for _, doc := range docs {
			matched := matchedTokens[doc.ID]
			if matched == 0 {
				continue
			}
			if float64(matched)/float64(len(queryTokens)) < PartialThreshold {
				continue
			}
			credit(doc, core.MatchTypePartial, float64(matched)*PartialScale)
			partialHits++
		}
	}
	monitor.AfterStrategy(core.MatchTypePartial, partialHits)

	hits := make([]*core.Hit, 0, len(candidates))
	for _, c := range candidates {
		var total, best float64
		matchType := core.MatchTypeExact
		for mt, score := range c.scores {
			total += score
			if score > best {
				best = score
				matchType = mt
			}
		}
		hits = append(hits, &core.Hit{
			Document:  c.doc,
			Score:     total,
			MatchType: matchType,
		})
	}
	monitor.Finish(hits)

	return hits
}

// exactScore applies the substring strategy: full-field equality, field
// containment, tag overlap, and a per-field bonus. No tokenization.
func exactScore(doc *core.Document, query string) float64 {
	if query == "" {
		return 0
	}

	var score float64
	matchedFields := 0

	for _, field := range []string{doc.Title, doc.Company, doc.Location, doc.Description} {
		lower := strings.ToLower(field)
		switch {
		case lower == query:
			score += ScoreExactField
			matchedFields++
		case strings.Contains(lower, query):
			score += ScoreFieldContains
			matchedFields++
		}
	}

	tagMatched := false
	for _, tag := range append(append([]string(nil), doc.Requirements...), doc.Benefits...) {
		lower := strings.ToLower(tag)
		if strings.Contains(lower, query) || strings.Contains(query, lower) {
			score += ScoreTagOverlap
			tagMatched = true
		}
	}
	if tagMatched {
		matchedFields++
	}

	score += float64(matchedFields) * ScoreMatchedFieldBonus
	return score
}

// fuzzyScore takes, per query token, the best normalized Levenshtein
// similarity against any document token, averages across query tokens, and
// scales the survivors by FuzzyScale.
func fuzzyScore(doc *core.Document, queryTokens []string) (float64, bool) {
	if len(queryTokens) == 0 {
		return 0, false
	}

	docTokens := index.Tokenize(doc.SearchableText())
	if len(docTokens) == 0 {
		return 0, false
	}

	var sum float64
	for _, qt := range queryTokens {
		best := 0.0
		for _, dt := range docTokens {
			if sim := similarity(qt, dt); sim > best {
				best = sim
			}
		}
		sum += best
	}

	avg := sum / float64(len(queryTokens))
	if avg < FuzzySimilarityThreshold {
		return 0, false
	}
	return avg * FuzzyScale, true
}

// stemToken reduces a single query token to its index stem so that postings
// written with stemmed terms are reachable.
func stemToken(token string) string {
	stems := index.StemTokens([]string{token})
	return stems[0]
}
