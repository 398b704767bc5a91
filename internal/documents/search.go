package documents

import (
	"time"

	"qms/pkg/search"
)

// Schema declares the document list filters and sort keys. Default order
// is createdAt descending.
var Schema = &search.Schema[*Document]{
	Filters: []search.Filter[*Document]{
		search.Enum("status", func(d *Document, _ time.Time) string { return string(d.Status) }, Statuses...),
		search.Enum("type", func(d *Document, _ time.Time) string { return string(d.Type) }, Types...),
		search.Equals("companyId", func(d *Document) string { return d.CompanyID }),
		search.Equals("processId", func(d *Document) string { return d.ProcessID }),
		search.Contains("author", func(d *Document) string { return d.Author }),
		search.Contains("title", func(d *Document) string { return d.Title }),
		search.Contains("code", func(d *Document) string { return d.Code }),
		search.DateRange("expiryDate", func(d *Document) *time.Time { return d.ExpiryDate }),
		search.Flag("expired", (*Document).IsExpired),
		search.Flag("expiringSoon", func(d *Document, now time.Time) bool {
			return d.IsExpiringSoon(ExpiringSoonDays, now)
		}),
	},
	Sorts: map[string]search.Comparator[*Document]{
		"code":       search.ByString(func(d *Document) string { return d.Code }),
		"title":      search.ByString(func(d *Document) string { return d.Title }),
		"status":     search.ByRank(func(d *Document) string { return string(d.Status) }, Statuses...),
		"expiryDate": search.ByTime(func(d *Document) *time.Time { return d.ExpiryDate }),
		"createdAt":  search.ByTime(func(d *Document) *time.Time { return &d.CreatedAt }),
		"updatedAt":  search.ByTime(func(d *Document) *time.Time { return &d.UpdatedAt }),
	},
	DefaultSort:  "createdAt",
	DefaultOrder: search.Desc,
	CreatedAt:    func(d *Document) time.Time { return d.CreatedAt },
	ID:           func(d *Document) string { return d.ID },
}
