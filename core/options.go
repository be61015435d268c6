package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sort orders recognised by the result pipeline. Any other value is treated
// as a facet field name to sort by, descending.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
)

// SearchOptions enumerates every option the engine recognises.
// Unknown options cannot be expressed: the struct is the contract.
type SearchOptions struct {
	// Filters maps facet names to required values, evaluated before scoring.
	Filters map[string]string

	// Sort is SortRelevance (default), SortDate, or a facet field name.
	Sort string

	// Page is the zero-indexed page of results to return.
	Page int

	// HitsPerPage is the page size. Must be positive.
	HitsPerPage int

	// Facets lists facet names to aggregate counts for over the final
	// (post-filter, pre-pagination) result set.
	Facets []string

	// HighlightPreTag and HighlightPostTag wrap query-token occurrences in
	// the response copies of title and description. Both empty disables
	// highlighting; setting only one is an error.
	HighlightPreTag  string
	HighlightPostTag string

	// EnableFuzzy toggles the edit-distance strategy.
	EnableFuzzy bool

	// EnableSemantic toggles the vector strategy. It additionally requires
	// QueryVector; without one the strategy is a silent no-op.
	EnableSemantic bool

	// QueryVector is the query embedding supplied by an external provider.
	QueryVector []float32
}

// DefaultSearchOptions returns the options applied when the caller passes nil.
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		Sort:        SortRelevance,
		Page:        0,
		HitsPerPage: 10,
	}
}

// ValidateSearchOptions rejects malformed options. Invalid values are
// reported, never coerced.
func ValidateSearchOptions(opts *SearchOptions) error {
	if opts == nil {
		return nil
	}
	if opts.Page < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, ErrInvalidPage)
	}
	if opts.HitsPerPage <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, ErrInvalidHitsPerPage)
	}
	if (opts.HighlightPreTag == "") != (opts.HighlightPostTag == "") {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, ErrInvalidHighlightTags)
	}
	return nil
}

// CanonicalString renders the options deterministically for cache keying.
// Two option sets with equal semantics produce equal strings.
func (o *SearchOptions) CanonicalString() string {
	var b strings.Builder

	filterKeys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		filterKeys = append(filterKeys, k)
	}
	sort.Strings(filterKeys)
	for _, k := range filterKeys {
		b.WriteString("f:")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(o.Filters[k])
		b.WriteByte(';')
	}

	b.WriteString("sort:")
	b.WriteString(o.Sort)
	b.WriteString(";page:")
	b.WriteString(strconv.Itoa(o.Page))
	b.WriteString(";hpp:")
	b.WriteString(strconv.Itoa(o.HitsPerPage))

	facets := append([]string(nil), o.Facets...)
	sort.Strings(facets)
	for _, f := range facets {
		b.WriteString(";facet:")
		b.WriteString(f)
	}

	b.WriteString(";hl:")
	b.WriteString(o.HighlightPreTag)
	b.WriteByte(',')
	b.WriteString(o.HighlightPostTag)
	b.WriteString(";fuzzy:")
	b.WriteString(strconv.FormatBool(o.EnableFuzzy))
	b.WriteString(";semantic:")
	b.WriteString(strconv.FormatBool(o.EnableSemantic))

	for _, v := range o.QueryVector {
		b.WriteString(";v:")
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}

	return b.String()
}
