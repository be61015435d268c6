package search

import (
	"sort"
	"strings"

	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/index"
)

// BuildResult runs the result pipeline over fused hits: deduplicate, sort,
// count facets over the full set, paginate, and highlight the returned page.
// The stored documents are never mutated; highlighting writes response copies.
func BuildResult(query string, hits []*core.Hit, opts *core.SearchOptions) *core.SearchResult {
	hits = dedupe(hits)
	sortHits(hits, opts.Sort)

	facetCounts := countFacets(hits, opts.Facets)

	total := len(hits)
	page := paginate(hits, opts.Page, opts.HitsPerPage)

	if opts.HighlightPreTag != "" {
		tokens := index.Tokenize(query)
		for i, hit := range page {
			highlighted := *hit
			highlighted.HighlightedTitle = Highlight(hit.Document.Title, tokens, opts.HighlightPreTag, opts.HighlightPostTag)
			highlighted.HighlightedDescription = Highlight(hit.Document.Description, tokens, opts.HighlightPreTag, opts.HighlightPostTag)
			page[i] = &highlighted
		}
	}

	return &core.SearchResult{
		Query:       query,
		Hits:        page,
		TotalHits:   total,
		Page:        opts.Page,
		HitsPerPage: opts.HitsPerPage,
		FacetCounts: facetCounts,
	}
}

// dedupe keeps one hit per document id, retaining the highest combined score.
func dedupe(hits []*core.Hit) []*core.Hit {
	seen := make(map[string]int, len(hits))
	out := make([]*core.Hit, 0, len(hits))
	for _, hit := range hits {
		if i, ok := seen[hit.Document.ID]; ok {
			if hit.Score > out[i].Score {
				out[i] = hit
			}
			continue
		}
		seen[hit.Document.ID] = len(out)
		out = append(out, hit)
	}
	return out
}

// sortHits orders hits by the requested sort: relevance (score descending,
// stable), date (publish timestamp descending), or a facet field descending.
func sortHits(hits []*core.Hit, sortBy string) {
	switch sortBy {
	case core.SortRelevance, "":
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Score > hits[j].Score
		})
	case core.SortDate:
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Document.PostedAt.After(hits[j].Document.PostedAt)
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool {
			return facetValue(hits[i].Document, sortBy) > facetValue(hits[j].Document, sortBy)
		})
	}
}

// paginate slices the sorted list. A pure function of its inputs: the same
// index state and options always yield the same page.
func paginate(hits []*core.Hit, page, hitsPerPage int) []*core.Hit {
	start := page * hitsPerPage
	if start >= len(hits) {
		return []*core.Hit{}
	}
	end := start + hitsPerPage
	if end > len(hits) {
		end = len(hits)
	}
	out := make([]*core.Hit, end-start)
	copy(out, hits[start:end])
	return out
}

// countFacets aggregates distinct values for each requested facet across the
// post-filter, pre-pagination result set.
func countFacets(hits []*core.Hit, facets []string) map[string]map[string]int {
	if len(facets) == 0 {
		return nil
	}
	counts := make(map[string]map[string]int, len(facets))
	for _, facet := range facets {
		counts[facet] = make(map[string]int)
		for _, hit := range hits {
			value := facetValue(hit.Document, facet)
			if value == "" {
				continue
			}
			counts[facet][value]++
		}
	}
	return counts
}

// facetValue resolves a facet name against the document's known fields first,
// then its free-form facet map.
func facetValue(doc *core.Document, facet string) string {
	switch facet {
	case "company":
		return doc.Company
	case "location":
		return doc.Location
	case "companySize":
		return doc.CompanySize
	case "salary":
		return doc.Salary
	default:
		return doc.Facets[facet]
	}
}

// Highlight wraps every case-insensitive occurrence of each token in pre/post
// markers. The input text is returned unchanged when no token matches.
func Highlight(text string, tokens []string, pre, post string) string {
	result := text
	for _, token := range tokens {
		if token == "" {
			continue
		}
		result = highlightToken(result, token, pre, post)
	}
	return result
}

func highlightToken(text, token, pre, post string) string {
	lower := strings.ToLower(text)
	token = strings.ToLower(token)

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(lower[start:], token)
		if i < 0 {
			b.WriteString(text[start:])
			break
		}
		i += start
		b.WriteString(text[start:i])
		b.WriteString(pre)
		b.WriteString(text[i : i+len(token)])
		b.WriteString(post)
		start = i + len(token)
	}
	return b.String()
}
