// Package stats computes dashboard aggregates over a ticket set.
package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

const (
	// TopCategoryLimit caps the category breakdown.
	TopCategoryLimit = 5

	UncategorizedID    = "uncategorized"
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#64748b"
)

// CategoryCount is one row of the top-categories breakdown.
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// TopCategories counts tickets per category and returns the largest
// TopCategoryLimit groups, most tickets first. Tickets without a category,
// or pointing at a category that no longer exists, are reported with the
// uncategorized name and color. Percentages are rounded individually and
// need not sum to 100.
func TopCategories(tickets []domain.Ticket, categories []domain.Category) []CategoryCount {
	out := []CategoryCount{}
	if len(tickets) == 0 {
		return out
	}

	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, t := range tickets {
		key := t.CategoryID
		if key == "" {
			key = UncategorizedID
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	total := float64(len(tickets))
	for _, key := range order {
		row := CategoryCount{
			CategoryID: key,
			Name:       UncategorizedName,
			Color:      UncategorizedColor,
			Count:      counts[key],
			Percentage: int(math.Round(100 * float64(counts[key]) / total)),
		}
		if c, ok := byID[key]; ok {
			row.Name = c.Name
			if c.Color != "" {
				row.Color = c.Color
			}
		}
		out = append(out, row)
	}

	slices.SortStableFunc(out, func(a, b CategoryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(out) > TopCategoryLimit {
		out = out[:TopCategoryLimit]
	}
	return out
}
