package findings

import (
	"time"

	"qms/pkg/search"
)

// Schema declares the finding list filters. Default order is detectedDate
// descending.
var Schema = &search.Schema[*Finding]{
	Filters: []search.Filter[*Finding]{
		search.Enum("status", func(f *Finding, _ time.Time) string { return string(f.Status) }, Statuses...),
		search.Enum("type", func(f *Finding, _ time.Time) string { return string(f.Type) }, Types...),
		search.Enum("source", func(f *Finding, _ time.Time) string { return string(f.Source) }, Sources...),
		search.Enum("severity", func(f *Finding, _ time.Time) string { return string(f.Severity) }, Severities...),
		search.Equals("companyId", func(f *Finding) string { return f.CompanyID }),
		search.Equals("processId", func(f *Finding) string { return f.ProcessID }),
		search.Equals("auditId", func(f *Finding) string { return f.AuditID }),
		search.Contains("title", func(f *Finding) string { return f.Title }),
		search.DateRange("detectedDate", func(f *Finding) *time.Time { return &f.DetectedDate }),
		search.Flag("overdueActions", (*Finding).HasOverdueActions),
	},
	Sorts: map[string]search.Comparator[*Finding]{
		"detectedDate": search.ByTime(func(f *Finding) *time.Time { return &f.DetectedDate }),
		"severity":     search.ByRank(func(f *Finding) string { return string(f.Severity) }, Severities...),
		"status":       search.ByRank(func(f *Finding) string { return string(f.Status) }, Statuses...),
		"title":        search.ByString(func(f *Finding) string { return f.Title }),
		"createdAt":    search.ByTime(func(f *Finding) *time.Time { return &f.CreatedAt }),
	},
	DefaultSort:  "detectedDate",
	DefaultOrder: search.Desc,
	CreatedAt:    func(f *Finding) time.Time { return f.CreatedAt },
	ID:           func(f *Finding) string { return f.ID },
}
