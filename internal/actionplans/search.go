package actionplans

import (
	"time"

	"qms/pkg/search"
)

// statusOrder ranks open plans first, late ones right after in-progress.
var statusOrder = []string{
	string(StatusPending), string(StatusInProgress), string(StatusOverdue),
	string(StatusCompleted), string(StatusCancelled),
}

// Schema declares the action plan list filters. The status filter and sort
// use the effective status, so OVERDUE is evaluated at request time.
var Schema = &search.Schema[*ActionPlan]{
	Filters: []search.Filter[*ActionPlan]{
		search.Enum("status", func(p *ActionPlan, now time.Time) string { return string(p.EffectiveStatus(now)) }, Statuses...),
		search.Enum("originType", func(p *ActionPlan, _ time.Time) string { return string(p.OriginType) }, OriginTypes...),
		search.Equals("originId", func(p *ActionPlan) string { return p.OriginID }),
		search.Equals("companyId", func(p *ActionPlan) string { return p.CompanyID }),
		search.Contains("createdBy", func(p *ActionPlan) string { return p.CreatedBy }),
		search.DateRange("createdDate", func(p *ActionPlan) *time.Time { return &p.CreatedDate }),
		search.NumberRange("completionPercentage", func(p *ActionPlan, _ time.Time) float64 { return p.CompletionPercentage }),
		search.Flag("overdueActions", (*ActionPlan).HasOverdueActions),
	},
	Sorts: map[string]search.Comparator[*ActionPlan]{
		"createdDate":          search.ByTime(func(p *ActionPlan) *time.Time { return &p.CreatedDate }),
		"status":               search.ByRankAt(func(p *ActionPlan, now time.Time) string { return string(p.EffectiveStatus(now)) }, statusOrder...),
		"completionPercentage": search.ByNumber(func(p *ActionPlan) float64 { return p.CompletionPercentage }),
		"createdAt":            search.ByTime(func(p *ActionPlan) *time.Time { return &p.CreatedAt }),
	},
	DefaultSort:  "createdDate",
	DefaultOrder: search.Desc,
	CreatedAt:    func(p *ActionPlan) time.Time { return p.CreatedAt },
	ID:           func(p *ActionPlan) string { return p.ID },
}
