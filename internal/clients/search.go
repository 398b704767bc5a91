package clients

import (
	"time"

	"qms/pkg/domain"
	"qms/pkg/search"
)

var Schema = &search.Schema[*Client]{
	Filters: []search.Filter[*Client]{
		search.Enum("status", func(c *Client, _ time.Time) string { return string(c.Status) }, domain.RecordStatuses...),
		search.Equals("companyId", func(c *Client) string { return c.CompanyID }),
		search.Equals("email", func(c *Client) string { return c.Email }),
		search.Contains("name", func(c *Client) string { return c.Name }),
		search.Contains("contact", func(c *Client) string { return c.Contact }),
		search.DateRange("createdAt", func(c *Client) *time.Time { return &c.CreatedAt }),
	},
	Sorts: map[string]search.Comparator[*Client]{
		"name":      search.ByString(func(c *Client) string { return c.Name }),
		"email":     search.ByString(func(c *Client) string { return c.Email }),
		"createdAt": search.ByTime(func(c *Client) *time.Time { return &c.CreatedAt }),
		"updatedAt": search.ByTime(func(c *Client) *time.Time { return &c.UpdatedAt }),
	},
	DefaultSort:  "name",
	DefaultOrder: search.Asc,
	CreatedAt:    func(c *Client) time.Time { return c.CreatedAt },
	ID:           func(c *Client) string { return c.ID },
}
