// Package listing derives the visible page of a ticket list from a raw
// ticket set and an explicit, serializable view state.
package listing

import (
	"strconv"
	"strings"
)

// DefaultPageSize is the fixed number of tickets per page.
const DefaultPageSize = 10

// FilterAll disables a status or category filter.
const FilterAll = "all"

// SortKey selects the list ordering.
type SortKey string

const (
	SortNewest   SortKey = "-created_date"
	SortUpvotes  SortKey = "upvotes"
	SortComments SortKey = "comments"
)

// Filters are AND-combined predicates over a ticket list.
type Filters struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	OwnOnly  bool   `json:"own_only"`
}

// ViewState is everything a ticket list view needs to render a page.
type ViewState struct {
	Filters  Filters `json:"filters"`
	Search   string  `json:"search"`
	Sort     SortKey `json:"sort"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// DefaultViewState is the initial state of a list view. My Tickets starts
// with ownOnly set, All Tickets without it.
func DefaultViewState(ownOnly bool) ViewState {
	return ViewState{
		Filters:  Filters{Status: FilterAll, Category: FilterAll, OwnOnly: ownOnly},
		Sort:     SortNewest,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// WithFilters replaces the filters and returns to the first page.
func (v ViewState) WithFilters(f Filters) ViewState {
	v.Filters = f
	v.Page = 1
	return v
}

// WithSearch replaces the search term and returns to the first page.
func (v ViewState) WithSearch(term string) ViewState {
	v.Search = term
	v.Page = 1
	return v
}

// WithSort replaces the ordering and returns to the first page.
func (v ViewState) WithSort(key SortKey) ViewState {
	v.Sort = key
	v.Page = 1
	return v
}

// WithPage moves to page without touching filters.
func (v ViewState) WithPage(page int) ViewState {
	v.Page = page
	return v
}

// Clamp resets the page to 1 when it falls outside [1, totalPages].
func (v ViewState) Clamp(totalPages int) ViewState {
	if v.Page < 1 || v.Page > totalPages {
		v.Page = 1
	}
	return v
}

func (v ViewState) pageSize() int {
	if v.PageSize <= 0 {
		return DefaultPageSize
	}
	return v.PageSize
}

// QueryGetter reads a single query parameter; fiber's Ctx.Query fits.
type QueryGetter func(key string, defaultValue ...string) string

// ParseViewState builds a view state from query parameters, starting from
// the defaults of the view. Unparseable values keep the default. The page
// size is not client-controlled. The search term is kept verbatim: spaces
// are part of the substring being matched.
func ParseViewState(query QueryGetter, defaults ViewState) ViewState {
	state := defaults
	if status := strings.TrimSpace(query("status")); status != "" {
		state.Filters.Status = status
	}
	if category := strings.TrimSpace(query("category")); category != "" {
		state.Filters.Category = category
	}
	if own := query("own_only"); own != "" {
		if parsed, err := strconv.ParseBool(own); err == nil {
			state.Filters.OwnOnly = parsed
		}
	}
	state.Search = query("search")
	if sort := strings.TrimSpace(query("sort")); sort != "" {
		state.Sort = SortKey(sort)
	}
	if page := query("page"); page != "" {
		if parsed, err := strconv.Atoi(page); err == nil {
			state.Page = parsed
		}
	}
	return state
}
