package suppliers

import (
	"time"

	"qms/pkg/domain"
	"qms/pkg/search"
)

// score sorts unevaluated suppliers below any real score.
func score(s *Supplier) float64 {
	if s.Evaluacion == nil {
		return -1
	}
	return *s.Evaluacion
}

var Schema = &search.Schema[*Supplier]{
	Filters: []search.Filter[*Supplier]{
		search.Enum("estado", func(s *Supplier, _ time.Time) string { return string(s.Estado()) }, Estados...),
		search.Enum("status", func(s *Supplier, _ time.Time) string { return string(s.Status) }, domain.RecordStatuses...),
		search.Equals("companyId", func(s *Supplier) string { return s.CompanyID }),
		search.Equals("ruc", func(s *Supplier) string { return s.RUC }),
		search.Contains("nombre", func(s *Supplier) string { return s.Nombre }),
		search.Contains("categoria", func(s *Supplier) string { return s.Categoria }),
		search.DateRange("siguienteEvaluacion", func(s *Supplier) *time.Time { return s.SiguienteEvaluacion }),
		search.Flag("evaluationOverdue", (*Supplier).EvaluationOverdue),
	},
	Sorts: map[string]search.Comparator[*Supplier]{
		"nombre":              search.ByString(func(s *Supplier) string { return s.Nombre }),
		"evaluacion":          search.ByNumber(score),
		"siguienteEvaluacion": search.ByTime(func(s *Supplier) *time.Time { return s.SiguienteEvaluacion }),
		"createdAt":           search.ByTime(func(s *Supplier) *time.Time { return &s.CreatedAt }),
	},
	DefaultSort:  "nombre",
	DefaultOrder: search.Asc,
	CreatedAt:    func(s *Supplier) time.Time { return s.CreatedAt },
	ID:           func(s *Supplier) string { return s.ID },
}
