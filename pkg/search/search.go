// Package search turns loosely typed query parameters into a bounded,
// deterministic page of results.
//
// Each entity declares a Schema once: the filters it accepts, the fields it
// can be sorted by and its defaults. Schema.Parse validates a request's query
// string into a Query; Query.Apply filters, sorts and slices an in-memory
// candidate set. Parsing never touches data and applying never fails, so
// callers can validate before they load anything from the store.
//
// Rules:
//   - unknown query keys are ignored
//   - page >= 1 (default 1), limit in [1, MaxLimit] (default per schema)
//   - sortBy must be declared by the schema, sortOrder is asc or desc
//   - sorting is stable; ties fall back to createdAt descending, then id
//   - Total counts every match, independent of page and limit
package search

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	dErrors "qms/pkg/domain-errors"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Predicate reports whether item matches. now is the instant the query was
// issued; derived flags compare stored dates against it.
type Predicate[T any] func(item T, now time.Time) bool

// Comparator orders two items ascending: negative when a sorts before b.
// now is the query instant, as for Predicate.
type Comparator[T any] func(a, b T, now time.Time) int

// Schema declares how one entity type is searched.
type Schema[T any] struct {
	Filters      []Filter[T]
	Sorts        map[string]Comparator[T]
	DefaultSort  string
	DefaultOrder Order
	DefaultLimit int

	// CreatedAt and ID break ties so pagination is deterministic.
	CreatedAt func(T) time.Time
	ID        func(T) string
}

// Query is a validated search request bound to a schema.
type Query[T any] struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder Order

	schema     *Schema[T]
	predicates []Predicate[T]
}

// Page is one slice of the ordered matches.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Parse validates values against the schema.
// Fails with CodeValidation on a malformed page, limit, sort or filter value.
func (s *Schema[T]) Parse(values url.Values) (Query[T], error) {
	q := Query[T]{
		Page:      DefaultPage,
		Limit:     s.defaultLimit(),
		SortBy:    s.DefaultSort,
		SortOrder: s.defaultOrder(),
		schema:    s,
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Query[T]{}, dErrors.Validation("page", "page debe ser un entero mayor o igual a 1")
		}
		q.Page = page
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return Query[T]{}, dErrors.Validation("limit", fmt.Sprintf("limit debe estar entre 1 y %d", MaxLimit))
		}
		q.Limit = limit
	}

	if raw := strings.TrimSpace(values.Get("sortBy")); raw != "" {
		if _, ok := s.Sorts[raw]; !ok {
			return Query[T]{}, dErrors.Validation("sortBy", "sortBy debe ser uno de: "+strings.Join(s.SortKeys(), ", "))
		}
		q.SortBy = raw
	}

	if raw := strings.TrimSpace(values.Get("sortOrder")); raw != "" {
		switch Order(strings.ToLower(raw)) {
		case Asc:
			q.SortOrder = Asc
		case Desc:
			q.SortOrder = Desc
		default:
			return Query[T]{}, dErrors.Validation("sortOrder", "sortOrder debe ser asc o desc")
		}
	}

	for _, f := range s.Filters {
		pred, err := f.parse(values)
		if err != nil {
			return Query[T]{}, err
		}
		if pred != nil {
			q.predicates = append(q.predicates, pred)
		}
	}
	return q, nil
}

// SortKeys lists the accepted sortBy values in a stable order.
func (s *Schema[T]) SortKeys() []string {
	keys := make([]string, 0, len(s.Sorts))
	for k := range s.Sorts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Schema[T]) defaultLimit() int {
	if s.DefaultLimit > 0 && s.DefaultLimit <= MaxLimit {
		return s.DefaultLimit
	}
	return DefaultLimit
}

func (s *Schema[T]) defaultOrder() Order {
	if s.DefaultOrder == Asc {
		return Asc
	}
	return Desc
}

// WithDefaultLimit returns a copy of the schema using limit when the request
// omits one. Out-of-range values leave the schema unchanged.
func (s *Schema[T]) WithDefaultLimit(limit int) *Schema[T] {
	if limit < 1 || limit > MaxLimit {
		return s
	}
	cp := *s
	cp.DefaultLimit = limit
	return &cp
}

// Matches reports whether item satisfies every filter in the query.
func (q Query[T]) Matches(item T, now time.Time) bool {
	for _, pred := range q.predicates {
		if !pred(item, now) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and paginates items. The input slice is not modified.
func (q Query[T]) Apply(items []T, now time.Time) Page[T] {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if q.Matches(item, now) {
			matched = append(matched, item)
		}
	}

	slices.SortStableFunc(matched, func(a, b T) int { return q.compare(a, b, now) })

	total := len(matched)
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}

	skip := (page - 1) * limit
	window := []T{}
	if skip < total {
		window = matched[skip:min(skip+limit, total)]
	}

	return Page[T]{
		Items:      window,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

func (q Query[T]) compare(a, b T, now time.Time) int {
	if q.schema != nil {
		if by, ok := q.schema.Sorts[q.SortBy]; ok {
			c := by(a, b, now)
			if q.SortOrder == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if q.schema.CreatedAt != nil {
			// Newest first regardless of the requested order.
			if c := q.schema.CreatedAt(b).Compare(q.schema.CreatedAt(a)); c != 0 {
				return c
			}
		}
		if q.schema.ID != nil {
			return cmp.Compare(q.schema.ID(a), q.schema.ID(b))
		}
	}
	return 0
}
