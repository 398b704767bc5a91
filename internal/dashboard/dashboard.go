// Package dashboard aggregates per-company counts across every module.
// Each count is a search with limit 1, so the numbers agree with what the
// list screens show for the same filters at the same instant.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

const summaryTimeout = 5 * time.Second

// Counter returns how many records match values.
type Counter func(ctx context.Context, values url.Values) (int, error)

// Count adapts a module's Search to a Counter.
func Count[T any](fn func(context.Context, url.Values) (search.Page[T], error)) Counter {
	return func(ctx context.Context, values url.Values) (int, error) {
		page, err := fn(ctx, values)
		if err != nil {
			return 0, err
		}
		return page.Total, nil
	}
}

// Module declares the counts shown for one entity type. Metrics maps a
// metric name to its filters; "total" is always added with no filter.
type Module struct {
	Name    string
	Count   Counter
	Metrics map[string]url.Values
}

// Summary holds metric counts keyed by module, then metric name.
type Summary struct {
	CompanyID   string                    `json:"companyId"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Modules     map[string]map[string]int `json:"modules"`
}

type Service struct {
	modules []Module
}

func NewService(modules ...Module) *Service {
	return &Service{modules: modules}
}

// Summary runs every count in parallel; the first failure cancels the
// rest and is returned. A blank companyID falls back to the caller's
// company claim.
func (s *Service) Summary(ctx context.Context, companyID string) (*Summary, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		companyID = requestcontext.CompanyID(ctx)
	}
	if err := validation.Required("companyId", companyID, "La empresa es obligatoria"); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	out := &Summary{
		CompanyID:   companyID,
		GeneratedAt: requestcontext.Now(ctx),
		Modules:     make(map[string]map[string]int, len(s.modules)),
	}
	var mu sync.Mutex

	for _, m := range s.modules {
		out.Modules[m.Name] = make(map[string]int, len(m.Metrics)+1)
		for name, filters := range withTotal(m.Metrics) {
			values := url.Values{"companyId": {companyID}, "limit": {"1"}}
			for k, v := range filters {
				values[k] = v
			}
			g.Go(func() error {
				n, err := m.Count(ctx, values)
				if err != nil {
					if _, ok := dErrors.As(err); ok {
						return err
					}
					return fmt.Errorf("count %s.%s: %w", m.Name, name, err)
				}
				mu.Lock()
				out.Modules[m.Name][name] = n
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "error al calcular el resumen")
	}
	return out, nil
}

func withTotal(metrics map[string]url.Values) map[string]url.Values {
	all := make(map[string]url.Values, len(metrics)+1)
	for k, v := range metrics {
		all[k] = v
	}
	all["total"] = url.Values{}
	return all
}
