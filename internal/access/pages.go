package access

import (
	"net/url"
	"strings"
)

// PageURL builds the client route for page. TicketDetail expects params["id"].
func PageURL(page Page, params map[string]string) string {
	path := "/" + strings.ReplaceAll(string(page), " ", "-")
	if len(params) == 0 {
		return path
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

// TicketDetailURL is the route for a single ticket.
func TicketDetailURL(ticketID string) string {
	return PageURL(PageTicketDetail, map[string]string{"id": ticketID})
}
