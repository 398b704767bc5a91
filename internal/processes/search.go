package processes

import (
	"time"

	"qms/pkg/domain"
	"qms/pkg/search"
)

var Schema = &search.Schema[*Process]{
	Filters: []search.Filter[*Process]{
		search.Enum("status", func(p *Process, _ time.Time) string { return string(p.Status) }, domain.RecordStatuses...),
		search.Enum("type", func(p *Process, _ time.Time) string { return string(p.Type) }, Types...),
		search.Equals("companyId", func(p *Process) string { return p.CompanyID }),
		search.Contains("code", func(p *Process) string { return p.Code }),
		search.Contains("name", func(p *Process) string { return p.Name }),
		search.Contains("owner", func(p *Process) string { return p.Owner }),
	},
	Sorts: map[string]search.Comparator[*Process]{
		"code":      search.ByString(func(p *Process) string { return p.Code }),
		"name":      search.ByString(func(p *Process) string { return p.Name }),
		"type":      search.ByRank(func(p *Process) string { return string(p.Type) }, Types...),
		"createdAt": search.ByTime(func(p *Process) *time.Time { return &p.CreatedAt }),
	},
	DefaultSort:  "code",
	DefaultOrder: search.Asc,
	CreatedAt:    func(p *Process) time.Time { return p.CreatedAt },
	ID:           func(p *Process) string { return p.ID },
}
