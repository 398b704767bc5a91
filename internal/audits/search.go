package audits

import (
	"time"

	"qms/pkg/search"
)

var Schema = &search.Schema[*Audit]{
	Filters: []search.Filter[*Audit]{
		search.Enum("status", func(a *Audit, _ time.Time) string { return string(a.Status) }, Statuses...),
		search.Enum("type", func(a *Audit, _ time.Time) string { return string(a.Type) }, Types...),
		search.Equals("companyId", func(a *Audit) string { return a.CompanyID }),
		search.Equals("processId", func(a *Audit) string { return a.ProcessID }),
		search.Contains("leadAuditor", func(a *Audit) string { return a.LeadAuditor }),
		search.Contains("title", func(a *Audit) string { return a.Title }),
		search.DateRange("plannedDate", func(a *Audit) *time.Time { return &a.PlannedDate }),
		search.Flag("overdue", (*Audit).IsOverdue),
	},
	Sorts: map[string]search.Comparator[*Audit]{
		"plannedDate": search.ByTime(func(a *Audit) *time.Time { return &a.PlannedDate }),
		"title":       search.ByString(func(a *Audit) string { return a.Title }),
		"status":      search.ByRank(func(a *Audit) string { return string(a.Status) }, Statuses...),
		"createdAt":   search.ByTime(func(a *Audit) *time.Time { return &a.CreatedAt }),
	},
	DefaultSort:  "plannedDate",
	DefaultOrder: search.Asc,
	CreatedAt:    func(a *Audit) time.Time { return a.CreatedAt },
	ID:           func(a *Audit) string { return a.ID },
}
