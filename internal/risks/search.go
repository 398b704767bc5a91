package risks

import (
	"time"

	"qms/pkg/search"
)

// Schema lists the highest levels first by default.
var Schema = &search.Schema[*Risk]{
	Filters: []search.Filter[*Risk]{
		search.Enum("status", func(r *Risk, _ time.Time) string { return string(r.Status) }, Statuses...),
		search.Enum("rating", func(r *Risk, _ time.Time) string { return string(r.Rating()) }, Ratings...),
		search.Equals("companyId", func(r *Risk) string { return r.CompanyID }),
		search.Equals("processId", func(r *Risk) string { return r.ProcessID }),
		search.Equals("category", func(r *Risk) string { return r.Category }),
		search.Contains("owner", func(r *Risk) string { return r.Owner }),
		search.Contains("title", func(r *Risk) string { return r.Title }),
		search.NumberRange("level", func(r *Risk, _ time.Time) float64 { return float64(r.Level()) }),
		search.Flag("overdueControls", (*Risk).HasOverdueControls),
	},
	Sorts: map[string]search.Comparator[*Risk]{
		"level":     search.ByNumber((*Risk).Level),
		"rating":    search.ByRank(func(r *Risk) string { return string(r.Rating()) }, Ratings...),
		"title":     search.ByString(func(r *Risk) string { return r.Title }),
		"status":    search.ByRank(func(r *Risk) string { return string(r.Status) }, Statuses...),
		"createdAt": search.ByTime(func(r *Risk) *time.Time { return &r.CreatedAt }),
	},
	DefaultSort:  "level",
	DefaultOrder: search.Desc,
	CreatedAt:    func(r *Risk) time.Time { return r.CreatedAt },
	ID:           func(r *Risk) string { return r.ID },
}
