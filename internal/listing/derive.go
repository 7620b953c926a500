package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// CommentCounts maps a ticket id to its number of persisted comments.
type CommentCounts map[string]int

// Result is one page of a derived ticket list.
type Result struct {
	Items      []domain.Ticket `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

// Derive filters, sorts and paginates tickets. The input slice is never
// modified. A page outside the result range yields no items; callers that
// want the reset-to-first-page behaviour use Prepare, Clamp and Paginate.
func Derive(tickets []domain.Ticket, state ViewState, currentUserEmail string, counts CommentCounts) Result {
	return Paginate(Prepare(tickets, state, currentUserEmail, counts), state.Page, state.pageSize())
}

// Prepare applies the filter and sort steps, returning a new slice.
func Prepare(tickets []domain.Ticket, state ViewState, currentUserEmail string, counts CommentCounts) []domain.Ticket {
	return Sort(Filter(tickets, state.Filters, state.Search, currentUserEmail), state.Sort, counts)
}

// Filter keeps the tickets matching every active predicate.
func Filter(tickets []domain.Ticket, filters Filters, search, currentUserEmail string) []domain.Ticket {
	needle := strings.ToLower(search)
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if matches(&t, &filters, needle, currentUserEmail) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t *domain.Ticket, filters *Filters, needle, currentUserEmail string) bool {
	if active(filters.Status) && string(t.Status) != filters.Status {
		return false
	}
	if active(filters.Category) && t.CategoryID != filters.Category {
		return false
	}
	if filters.OwnOnly && t.ReporterEmail != currentUserEmail {
		return false
	}
	if needle != "" &&
		!strings.Contains(strings.ToLower(t.Title), needle) &&
		!strings.Contains(strings.ToLower(t.Description), needle) {
		return false
	}
	return true
}

func active(filter string) bool {
	return filter != "" && filter != FilterAll
}

// Sort returns a stably sorted copy of tickets. Unknown keys keep the
// input order.
func Sort(tickets []domain.Ticket, key SortKey, counts CommentCounts) []domain.Ticket {
	out := slices.Clone(tickets)
	if out == nil {
		out = []domain.Ticket{}
	}
	switch key {
	case SortUpvotes:
		slices.SortStableFunc(out, func(a, b domain.Ticket) int {
			return cmp.Compare(b.Upvotes, a.Upvotes)
		})
	case SortComments:
		slices.SortStableFunc(out, func(a, b domain.Ticket) int {
			return cmp.Compare(counts[b.ID], counts[a.ID])
		})
	case SortNewest:
		slices.SortStableFunc(out, func(a, b domain.Ticket) int {
			return b.CreatedDate.Compare(a.CreatedDate)
		})
	}
	return out
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate slices [(page-1)*size, page*size) out of tickets.
func Paginate(tickets []domain.Ticket, page, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	res := Result{
		Items:      []domain.Ticket{},
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(len(tickets), pageSize),
		Total:      len(tickets),
	}
	if page < 1 {
		return res
	}
	start := (page - 1) * pageSize
	if start >= len(tickets) {
		return res
	}
	end := min(start+pageSize, len(tickets))
	res.Items = slices.Clone(tickets[start:end])
	return res
}

// View runs the whole list pipeline the way a list page does: filter and
// sort, clamp an out-of-range page back to 1, then paginate. It returns
// the state actually rendered.
func View(tickets []domain.Ticket, state ViewState, currentUserEmail string, counts CommentCounts) (Result, ViewState) {
	prepared := Prepare(tickets, state, currentUserEmail, counts)
	state = state.Clamp(TotalPages(len(prepared), state.pageSize()))
	return Paginate(prepared, state.Page, state.pageSize()), state
}
