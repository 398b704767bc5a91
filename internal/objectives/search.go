package objectives

import (
	"time"

	"qms/pkg/search"
)

// Schema declares the objective list filters. Default order is dueDate
// ascending so the closest deadlines come first.
var Schema = &search.Schema[*Objective]{
	Filters: []search.Filter[*Objective]{
		search.Enum("status", func(o *Objective, _ time.Time) string { return string(o.Status) }, Statuses...),
		search.Equals("companyId", func(o *Objective) string { return o.CompanyID }),
		search.Equals("processId", func(o *Objective) string { return o.ProcessID }),
		search.Contains("responsible", func(o *Objective) string { return o.Responsible }),
		search.Contains("title", func(o *Objective) string { return o.Title }),
		search.DateRange("dueDate", func(o *Objective) *time.Time { return &o.DueDate }),
		search.NumberRange("progress", func(o *Objective, _ time.Time) float64 { return o.Progress() }),
		search.Flag("overdue", (*Objective).IsOverdue),
	},
	Sorts: map[string]search.Comparator[*Objective]{
		"dueDate":   search.ByTime(func(o *Objective) *time.Time { return &o.DueDate }),
		"title":     search.ByString(func(o *Objective) string { return o.Title }),
		"status":    search.ByRank(func(o *Objective) string { return string(o.Status) }, Statuses...),
		"progress":  search.ByNumber((*Objective).Progress),
		"createdAt": search.ByTime(func(o *Objective) *time.Time { return &o.CreatedAt }),
	},
	DefaultSort:  "dueDate",
	DefaultOrder: search.Asc,
	CreatedAt:    func(o *Objective) time.Time { return o.CreatedAt },
	ID:           func(o *Objective) string { return o.ID },
}
