package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func queryOf(values map[string]string) QueryGetter {
	return func(key string, defaultValue ...string) string {
		if v, ok := values[key]; ok {
			return v
		}
		if len(defaultValue) > 0 {
			return defaultValue[0]
		}
		return ""
	}
}

func TestChangingFiltersResetsPage(t *testing.T) {
	state := DefaultViewState(true).WithPage(4)

	assert.Equal(t, 1, state.WithFilters(Filters{Status: "open", Category: FilterAll}).Page)
	assert.Equal(t, 1, state.WithSearch("vpn").Page)
	assert.Equal(t, 1, state.WithSort(SortUpvotes).Page)
	assert.Equal(t, 4, state.Page, "original state is a value and stays untouched")
}

func TestClamp(t *testing.T) {
	state := DefaultViewState(false)
	assert.Equal(t, 1, state.WithPage(5).Clamp(2).Page)
	assert.Equal(t, 2, state.WithPage(2).Clamp(2).Page)
	assert.Equal(t, 1, state.WithPage(0).Clamp(3).Page)
	assert.Equal(t, 1, state.WithPage(1).Clamp(0).Page)
}

func TestParseViewState(t *testing.T) {
	state := ParseViewState(queryOf(map[string]string{
		"status":   "resolved",
		"category": "cat-1",
		"own_only": "false",
		"search":   "  printer ",
		"sort":     "upvotes",
		"page":     "3",
	}), DefaultViewState(true))

	assert.Equal(t, Filters{Status: "resolved", Category: "cat-1", OwnOnly: false}, state.Filters)
	assert.Equal(t, "  printer ", state.Search)
	assert.Equal(t, SortUpvotes, state.Sort)
	assert.Equal(t, 3, state.Page)
	assert.Equal(t, DefaultPageSize, state.PageSize)
}

func TestParseViewStateKeepsDefaultsOnGarbage(t *testing.T) {
	defaults := DefaultViewState(true)
	state := ParseViewState(queryOf(map[string]string{
		"own_only": "maybe",
		"page":     "two",
	}), defaults)
	assert.Equal(t, defaults, state)
}
