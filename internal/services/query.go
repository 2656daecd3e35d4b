package services

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// EmptyStage says which pipeline stage left a query with no results
type EmptyStage string

const (
	EmptyNone   EmptyStage = ""
	EmptyNoData EmptyStage = "no-data"
	EmptyFilter EmptyStage = "filter"
	EmptySearch EmptyStage = "search"
)

// PageBounds returns the [start, end) window of page (1-based) over total
// items. Pages past the end yield an empty window at total. The bounds are
// computed without multiplying out of range, so any page is safe.
func PageBounds(total, page, perPage int) (start, end int) {
	if perPage < 1 || total <= 0 {
		return total, total
	}
	page = max(page, 1)
	pages := (total-1)/perPage + 1
	if page-1 >= pages {
		return total, total
	}
	start = (page - 1) * perPage
	return start, start + min(perPage, total-start)
}

// Query describes one pass of the filter, search, sort pipeline over a
// collection of T. A nil Filter keeps everything, an empty Search matches
// everything and a nil Compare keeps the base order.
type Query[T any] struct {
	Filter  func(T) bool
	Search  string
	Fields  func(T) []string
	Compare func(a, b T) int
}

// QueryResult is the derived view of a query
type QueryResult[T any] struct {
	Items      []T
	Total      int // size of the base collection
	Filtered   int // left after the filter stage
	Matched    int // left after the search stage
	EmptyStage EmptyStage
}

// RunQuery filters, searches and stable-sorts base without modifying it
func RunQuery[T any](base []T, q Query[T]) QueryResult[T] {
	result := QueryResult[T]{Total: len(base)}

	filtered := make([]T, 0, len(base))
	for _, item := range base {
		if q.Filter == nil || q.Filter(item) {
			filtered = append(filtered, item)
		}
	}
	result.Filtered = len(filtered)

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	matched := filtered
	if needle != "" && q.Fields != nil {
		matched = make([]T, 0, len(filtered))
		for _, item := range filtered {
			if containsFold(q.Fields(item), needle) {
				matched = append(matched, item)
			}
		}
	}
	result.Matched = len(matched)

	if q.Compare != nil {
		slices.SortStableFunc(matched, q.Compare)
	}
	result.Items = matched

	switch {
	case result.Total == 0:
		result.EmptyStage = EmptyNoData
	case result.Filtered == 0:
		result.EmptyStage = EmptyFilter
	case result.Matched == 0:
		result.EmptyStage = EmptySearch
	}

	return result
}

// containsFold reports whether any field contains the lowercased needle
func containsFold(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Facet is a named bucket counted over the unfiltered collection
type Facet[T any] struct {
	Key   string
	Label string
	Match func(T) bool
}

// FacetCount is the number of base items in a bucket
type FacetCount struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CountFacets counts every facet against base, ignoring any active filter
func CountFacets[T any](base []T, facets []Facet[T]) []FacetCount {
	counts := make([]FacetCount, 0, len(facets))
	for _, f := range facets {
		n := 0
		for _, item := range base {
			if f.Match(item) {
				n++
			}
		}
		counts = append(counts, FacetCount{Value: f.Key, Label: f.Label, Count: n})
	}
	return counts
}

// FacetMap flattens facet counts into value -> count
func FacetMap(counts []FacetCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Value] = c.Count
	}
	return m
}

// Comparator helpers shared by the event and ticket pipelines

func byTime[T any](get func(T) time.Time, desc bool) func(a, b T) int {
	return func(a, b T) int {
		c := get(a).Compare(get(b))
		if desc {
			return -c
		}
		return c
	}
}

func byOrdered[T any, K cmp.Ordered](get func(T) K, desc bool) func(a, b T) int {
	return func(a, b T) int {
		c := cmp.Compare(get(a), get(b))
		if desc {
			return -c
		}
		return c
	}
}

// byTitle orders by a locale aware, case insensitive comparison.
// A collator is not safe for concurrent use, so each comparator gets its own.
func byTitle[T any](get func(T) string, desc bool) func(a, b T) int {
	collator := collate.New(language.English, collate.IgnoreCase)
	return func(a, b T) int {
		c := collator.CompareString(get(a), get(b))
		if desc {
			return -c
		}
		return c
	}
}
