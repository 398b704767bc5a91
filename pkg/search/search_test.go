package search

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "qms/pkg/domain-errors"
)

type item struct {
	id        string
	title     string
	status    string
	owner     string
	score     float64
	due       *time.Time
	createdAt time.Time
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := base.AddDate(0, 0, days)
	return &t
}

func testSchema() *Schema[item] {
	return &Schema[item]{
		Filters: []Filter[item]{
			Contains("title", func(i item) string { return i.title }),
			Equals("owner", func(i item) string { return i.owner }),
			Enum("status", func(i item, _ time.Time) string { return i.status }, "OPEN", "CLOSED"),
			DateRange("due", func(i item) *time.Time { return i.due }),
			NumberRange("score", func(i item, _ time.Time) float64 { return i.score }),
			Flag("overdue", func(i item, now time.Time) bool {
				return i.status == "OPEN" && i.due != nil && i.due.Before(now)
			}),
		},
		Sorts: map[string]Comparator[item]{
			"title":     ByString(func(i item) string { return i.title }),
			"score":     ByNumber(func(i item) float64 { return i.score }),
			"due":       ByTime(func(i item) *time.Time { return i.due }),
			"status":    ByRank(func(i item) string { return i.status }, "OPEN", "CLOSED"),
			"createdAt": ByTime(func(i item) *time.Time { return &i.createdAt }),
		},
		DefaultSort:  "createdAt",
		DefaultOrder: Desc,
		DefaultLimit: 10,
		CreatedAt:    func(i item) time.Time { return i.createdAt },
		ID:           func(i item) string { return i.id },
	}
}

func fixtures() []item {
	return []item{
		{id: "a", title: "Calibración de equipos", status: "OPEN", owner: "QA", score: 3, due: at(-2), createdAt: base.Add(1 * time.Hour)},
		{id: "b", title: "Revisión por la dirección", status: "CLOSED", owner: "qa", score: 7, due: at(5), createdAt: base.Add(2 * time.Hour)},
		{id: "c", title: "Auditoría interna", status: "OPEN", owner: "OPS", score: 7, due: at(10), createdAt: base.Add(3 * time.Hour)},
		{id: "d", title: "Calibración anual", status: "OPEN", owner: "QA", score: 9, due: nil, createdAt: base.Add(4 * time.Hour)},
		{id: "e", title: "Capacitación", status: "CLOSED", owner: "HR", score: 7, due: at(-1), createdAt: base.Add(4 * time.Hour)},
	}
}

type SearchSuite struct {
	suite.Suite
	schema *Schema[item]
}

func TestSearchSuite(t *testing.T) {
	suite.Run(t, new(SearchSuite))
}

func (s *SearchSuite) SetupTest() {
	s.schema = testSchema()
}

func (s *SearchSuite) run(values url.Values) Page[item] {
	q, err := s.schema.Parse(values)
	s.Require().NoError(err)
	return q.Apply(fixtures(), base)
}

func ids(p Page[item]) []string {
	out := make([]string, 0, len(p.Items))
	for _, i := range p.Items {
		out = append(out, i.id)
	}
	return out
}

func (s *SearchSuite) TestDefaults() {
	q, err := s.schema.Parse(url.Values{})
	s.Require().NoError(err)
	s.Equal(1, q.Page)
	s.Equal(10, q.Limit)
	s.Equal("createdAt", q.SortBy)
	s.Equal(Desc, q.SortOrder)

	page := q.Apply(fixtures(), base)
	s.Equal(5, page.Total)
	// d and e share createdAt; id breaks the tie.
	s.Equal([]string{"d", "e", "c", "b", "a"}, ids(page))
}

func (s *SearchSuite) TestValidation() {
	cases := map[string]url.Values{
		"page zero":        {"page": {"0"}},
		"page not numeric": {"page": {"first"}},
		"limit zero":       {"limit": {"0"}},
		"limit above max":  {"limit": {"101"}},
		"unknown sort key": {"sortBy": {"owner"}},
		"bad sort order":   {"sortOrder": {"up"}},
		"bad enum":         {"status": {"PENDING"}},
		"bad date":         {"dueFrom": {"03/01/2026"}},
		"bad number":       {"minScore": {"high"}},
		"bad flag":         {"overdue": {"yes please"}},
	}
	for name, values := range cases {
		s.Run(name, func() {
			_, err := s.schema.Parse(values)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	s.Run("field is reported", func() {
		_, err := s.schema.Parse(url.Values{"limit": {"500"}})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal("limit", de.Field)
	})

	s.Run("limit bounds are inclusive", func() {
		_, err := s.schema.Parse(url.Values{"limit": {"1"}})
		s.NoError(err)
		_, err = s.schema.Parse(url.Values{"limit": {"100"}})
		s.NoError(err)
	})
}

func (s *SearchSuite) TestUnknownKeysIgnored() {
	page := s.run(url.Values{"color": {"blue"}, "companyId": {"x"}})
	s.Equal(5, page.Total)
}

func (s *SearchSuite) TestFilters() {
	s.Run("contains is case-insensitive substring", func() {
		page := s.run(url.Values{"title": {"CALIBRACIÓN"}})
		s.ElementsMatch([]string{"a", "d"}, ids(page))
	})

	s.Run("equals is case-insensitive exact", func() {
		page := s.run(url.Values{"owner": {"qa"}})
		s.ElementsMatch([]string{"a", "b", "d"}, ids(page))
		page = s.run(url.Values{"owner": {"Q"}})
		s.Empty(page.Items)
	})

	s.Run("enum accepts lower case input", func() {
		page := s.run(url.Values{"status": {"closed"}})
		s.ElementsMatch([]string{"b", "e"}, ids(page))
	})

	s.Run("date range is inclusive and skips missing dates", func() {
		page := s.run(url.Values{"dueFrom": {"2026-02-27"}, "dueTo": {"2026-03-06"}})
		s.ElementsMatch([]string{"a", "b", "e"}, ids(page))
	})

	s.Run("date-only upper bound covers the day", func() {
		page := s.run(url.Values{"dueTo": {"2026-02-28"}})
		s.ElementsMatch([]string{"e", "a"}, ids(page))
	})

	s.Run("inverted date range is empty, not an error", func() {
		page := s.run(url.Values{"dueFrom": {"2026-04-01"}, "dueTo": {"2026-01-01"}})
		s.Equal(0, page.Total)
		s.Empty(page.Items)
	})

	s.Run("number range is inclusive", func() {
		page := s.run(url.Values{"minScore": {"7"}, "maxScore": {"7"}})
		s.ElementsMatch([]string{"b", "c", "e"}, ids(page))
	})

	s.Run("flag is computed against now", func() {
		page := s.run(url.Values{"overdue": {"true"}})
		s.Equal([]string{"a"}, ids(page))

		q, err := s.schema.Parse(url.Values{"overdue": {"true"}})
		s.Require().NoError(err)
		later := q.Apply(fixtures(), base.AddDate(0, 0, 11))
		s.ElementsMatch([]string{"a", "c"}, ids(later))
	})

	s.Run("false flag keeps the complement", func() {
		page := s.run(url.Values{"overdue": {"false"}})
		s.Equal(4, page.Total)
	})

	s.Run("filters combine with AND", func() {
		page := s.run(url.Values{"owner": {"QA"}, "status": {"OPEN"}, "minScore": {"5"}})
		s.Equal([]string{"d"}, ids(page))
	})
}

func (s *SearchSuite) TestSorting() {
	s.Run("ascending by title", func() {
		page := s.run(url.Values{"sortBy": {"title"}, "sortOrder": {"asc"}})
		s.Equal([]string{"c", "d", "a", "e", "b"}, ids(page))
	})

	s.Run("ties broken by createdAt descending", func() {
		page := s.run(url.Values{"sortBy": {"score"}, "sortOrder": {"asc"}})
		s.Equal([]string{"a", "e", "c", "b", "d"}, ids(page))
	})

	s.Run("missing dates sort last ascending", func() {
		page := s.run(url.Values{"sortBy": {"due"}, "sortOrder": {"asc"}})
		s.Equal("d", page.Items[len(page.Items)-1].id)
	})

	s.Run("rank order", func() {
		page := s.run(url.Values{"sortBy": {"status"}, "sortOrder": {"asc"}})
		s.Equal([]string{"d", "c", "a", "e", "b"}, ids(page))
	})

	s.Run("re-querying yields the same sequence", func() {
		values := url.Values{"sortBy": {"score"}, "sortOrder": {"desc"}, "limit": {"2"}, "page": {"2"}}
		first := s.run(values)
		for range 10 {
			s.Equal(ids(first), ids(s.run(values)))
		}
	})
}

func (s *SearchSuite) TestSortByValueDerivedAtQueryTime() {
	schema := testSchema()
	schema.Sorts["state"] = ByRankAt(func(i item, now time.Time) string {
		if i.status == "OPEN" && i.due != nil && i.due.Before(now) {
			return "LATE"
		}
		return i.status
	}, "LATE", "OPEN", "CLOSED")

	q, err := schema.Parse(url.Values{"sortBy": {"state"}, "sortOrder": {"asc"}, "status": {"OPEN"}})
	s.Require().NoError(err)

	s.Equal([]string{"a", "d", "c"}, ids(q.Apply(fixtures(), base)))
	s.Equal([]string{"d", "c", "a"}, ids(q.Apply(fixtures(), base.AddDate(0, 0, -5))), "nothing late yet")
	s.Equal([]string{"c", "a", "d"}, ids(q.Apply(fixtures(), base.AddDate(0, 0, 11))))
}

func (s *SearchSuite) TestPagination() {
	s.Run("pages partition the matches", func() {
		seen := map[string]bool{}
		for p := 1; p <= 3; p++ {
			page := s.run(url.Values{"limit": {"2"}, "page": {fmt.Sprint(p)}})
			s.LessOrEqual(len(page.Items), 2)
			s.Equal(5, page.Total)
			s.Equal(3, page.TotalPages)
			for _, i := range page.Items {
				s.False(seen[i.id], "item %s returned twice", i.id)
				seen[i.id] = true
			}
		}
		s.Len(seen, 5)
	})

	s.Run("page past the end is empty with full total", func() {
		page := s.run(url.Values{"limit": {"2"}, "page": {"9"}})
		s.Empty(page.Items)
		s.NotNil(page.Items)
		s.Equal(5, page.Total)
	})

	s.Run("total reflects filters, not pagination", func() {
		page := s.run(url.Values{"status": {"OPEN"}, "limit": {"1"}})
		s.Len(page.Items, 1)
		s.Equal(3, page.Total)
	})
}

func (s *SearchSuite) TestApplyDoesNotMutateInput() {
	in := fixtures()
	q, err := s.schema.Parse(url.Values{"sortBy": {"title"}, "sortOrder": {"asc"}})
	s.Require().NoError(err)
	q.Apply(in, base)
	s.Equal("a", in[0].id)
}

func (s *SearchSuite) TestWithDefaultLimit() {
	q, err := s.schema.WithDefaultLimit(50).Parse(url.Values{})
	s.Require().NoError(err)
	s.Equal(50, q.Limit)
	s.Equal(10, s.schema.DefaultLimit)

	q, err = s.schema.WithDefaultLimit(1000).Parse(url.Values{})
	s.Require().NoError(err)
	s.Equal(10, q.Limit)
}
