package stats

import (
	"slices"
	"time"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

const (
	// ActivityDays is the width of the activity window, today included.
	ActivityDays = 7
	// RecentLimit is how many tickets the recent list shows.
	RecentLimit = 5

	activityLabelLayout = "Jan 2"
)

// StatusSummary counts tickets per lifecycle state.
type StatusSummary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// Summarize counts tickets by status.
func Summarize(tickets []domain.Ticket) StatusSummary {
	s := StatusSummary{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			s.Open++
		case domain.TicketStatusInProgress:
			s.InProgress++
		case domain.TicketStatusResolved:
			s.Resolved++
		case domain.TicketStatusClosed:
			s.Closed++
		}
	}
	return s
}

// DayActivity is one bucket of the activity chart.
type DayActivity struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// Activity buckets tickets created during the last ActivityDays calendar
// days (UTC) ending on now's day, oldest first. Resolved counts the
// tickets of that day which are resolved or closed.
func Activity(tickets []domain.Ticket, now time.Time) []DayActivity {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -(ActivityDays - 1))

	days := make([]DayActivity, ActivityDays)
	for i := range days {
		day := first.AddDate(0, 0, i)
		days[i] = DayActivity{Date: day.Format(time.DateOnly), Label: day.Format(activityLabelLayout)}
	}

	for _, t := range tickets {
		created := t.CreatedDate.UTC()
		if created.Before(first) || !created.Before(today.AddDate(0, 0, 1)) {
			continue
		}
		idx := int(created.Sub(first) / (24 * time.Hour))
		days[idx].Created++
		if t.Status.Done() {
			days[idx].Resolved++
		}
	}
	return days
}

// Recent returns the RecentLimit most recently created tickets.
func Recent(tickets []domain.Ticket) []domain.Ticket {
	out := slices.Clone(tickets)
	slices.SortStableFunc(out, func(a, b domain.Ticket) int {
		return b.CreatedDate.Compare(a.CreatedDate)
	})
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	if out == nil {
		out = []domain.Ticket{}
	}
	return out
}

// Dashboard bundles every aggregate the dashboard renders.
type Dashboard struct {
	Summary       StatusSummary   `json:"summary"`
	TopCategories []CategoryCount `json:"top_categories"`
	Activity      []DayActivity   `json:"activity"`
	Recent        []domain.Ticket `json:"recent"`
}

// Build computes the dashboard for tickets.
func Build(tickets []domain.Ticket, categories []domain.Category, now time.Time) Dashboard {
	return Dashboard{
		Summary:       Summarize(tickets),
		TopCategories: TopCategories(tickets, categories),
		Activity:      Activity(tickets, now),
		Recent:        Recent(tickets),
	}
}
