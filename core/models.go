package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// CacheKey is a 64-bit hash identifying a (query, options) pair.
type CacheKey uint64

// KeyFromContent generates a deterministic CacheKey from text using BLAKE2b hashing.
// Identical content always produces identical keys.
func KeyFromContent(text string) CacheKey {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return CacheKey(binary.LittleEndian.Uint64(sum))
}

// Document represents a single posting in the corpus.
// The engine treats caller-supplied fields as immutable; it derives its own
// searchable text from them at index time.
type Document struct {
	ID              string
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    []string
	Benefits        []string
	Salary          string
	ExperienceYears int
	CompanySize     string
	PostedAt        time.Time
	Facets          map[string]string
	Vector          []float32 // Embedding vector for semantic search (populated by collaborators)
}

// SearchableText concatenates the document's text fields into the string the
// lexical strategies match against. Recomputed whenever the document is indexed.
func (d *Document) SearchableText() string {
	parts := make([]string, 0, 6+len(d.Requirements)+len(d.Benefits))
	parts = append(parts, d.Title, d.Company, d.Location, d.Description, d.Salary, d.CompanySize)
	parts = append(parts, d.Requirements...)
	parts = append(parts, d.Benefits...)
	return strings.Join(parts, " ")
}

// Clone returns a deep copy of the document so the engine never aliases
// collaborator-owned slices and maps.
func (d *Document) Clone() *Document {
	c := *d
	if d.Requirements != nil {
		c.Requirements = append([]string(nil), d.Requirements...)
	}
	if d.Benefits != nil {
		c.Benefits = append([]string(nil), d.Benefits...)
	}
	if d.Vector != nil {
		c.Vector = append([]float32(nil), d.Vector...)
	}
	if d.Facets != nil {
		c.Facets = make(map[string]string, len(d.Facets))
		for k, v := range d.Facets {
			c.Facets[k] = v
		}
	}
	return &c
}

// MatchType identifies the strategy that contributed most to a hit's score.
type MatchType string

const (
	MatchTypeExact    MatchType = "exact"
	MatchTypeFuzzy    MatchType = "fuzzy"
	MatchTypePartial  MatchType = "partial"
	MatchTypeSemantic MatchType = "semantic"
)

// Hit is a single ranked document in a search response.
type Hit struct {
	Document  *Document
	Score     float64
	MatchType MatchType
	// Highlighted copies of the title and description. Empty when
	// highlighting was not requested. The stored document is never mutated.
	HighlightedTitle       string
	HighlightedDescription string
}

// SearchResult is the full response envelope for one search.
type SearchResult struct {
	Query          string
	Hits           []*Hit
	TotalHits      int
	Page           int
	HitsPerPage    int
	FacetCounts    map[string]map[string]int
	ProcessingTime time.Duration
}

// SuggestionSource identifies where a suggestion came from.
type SuggestionSource string

const (
	SuggestionSourcePrefix  SuggestionSource = "prefix"
	SuggestionSourceHistory SuggestionSource = "history"
	SuggestionSourcePopular SuggestionSource = "popular"
)

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	Term   string
	Source SuggestionSource
}

// QueryCount pairs a query string with its popularity counter.
type QueryCount struct {
	Query string
	Count uint64
}

// Analytics is the read-only diagnostics snapshot exposed by the engine.
type Analytics struct {
	TotalSearches   uint64
	AvgResponseTime time.Duration
	PopularQueries  []QueryCount
	IndexSize       int
}
