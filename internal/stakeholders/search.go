package stakeholders

import (
	"time"

	"qms/pkg/domain"
	"qms/pkg/search"
)

// Schema declares the stakeholder filters. priority is derived and matched
// against the computed quadrant.
var Schema = &search.Schema[*Stakeholder]{
	Filters: []search.Filter[*Stakeholder]{
		search.Enum("status", func(s *Stakeholder, _ time.Time) string { return string(s.Status) }, domain.RecordStatuses...),
		search.Enum("type", func(s *Stakeholder, _ time.Time) string { return string(s.Type) }, Types...),
		search.Enum("influence", func(s *Stakeholder, _ time.Time) string { return string(s.Influence) }, Levels...),
		search.Enum("interest", func(s *Stakeholder, _ time.Time) string { return string(s.Interest) }, Levels...),
		search.Enum("priority", func(s *Stakeholder, _ time.Time) string { return string(s.Priority()) }, Priorities...),
		search.Equals("companyId", func(s *Stakeholder) string { return s.CompanyID }),
		search.Contains("name", func(s *Stakeholder) string { return s.Name }),
		search.Contains("category", func(s *Stakeholder) string { return s.Category }),
	},
	Sorts: map[string]search.Comparator[*Stakeholder]{
		"name":      search.ByString(func(s *Stakeholder) string { return s.Name }),
		"influence": search.ByRank(func(s *Stakeholder) string { return string(s.Influence) }, Levels...),
		"interest":  search.ByRank(func(s *Stakeholder) string { return string(s.Interest) }, Levels...),
		"priority":  search.ByRank(func(s *Stakeholder) string { return string(s.Priority()) }, Priorities...),
		"createdAt": search.ByTime(func(s *Stakeholder) *time.Time { return &s.CreatedAt }),
	},
	DefaultSort:  "createdAt",
	DefaultOrder: search.Desc,
	CreatedAt:    func(s *Stakeholder) time.Time { return s.CreatedAt },
	ID:           func(s *Stakeholder) string { return s.ID },
}
