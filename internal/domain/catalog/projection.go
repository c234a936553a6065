package catalog

import (
	"sort"
	"strings"
)

// SortKey selects the view-level ordering applied by Project.
type SortKey string

const (
	// SortNone preserves the incoming catalog order (rating-descending from
	// the loader).
	SortNone SortKey = ""
	// SortPrice orders by ascending price.
	SortPrice SortKey = "price"
	// SortRating orders by descending rating, missing rating counting as 0.
	SortRating SortKey = "rating"
)

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "All"

// Query holds the filter and sort state entered on the browsing view.
type Query struct {
	Category string
	Search   string
	Sort     SortKey
}

// Project derives the displayed product sequence from the catalog and the
// active query. It is a pure function: the input slice is never mutated.
//
// Filters compose in order: category (unless "All"), then a trimmed
// case-insensitive substring match against name or brand. Sorts are stable so
// that re-filtering on every keystroke never reshuffles equal-rank items.
func Project(products []Product, q Query) []Product {
	out := make([]Product, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range products {
		if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case SortRating:
		sortByRatingDesc(out)
	}
	return out
}

func matchesSearch(p Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Brand), search)
}
