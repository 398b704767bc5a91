package actionplans

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"

	"qms/internal/platform/events"
	"qms/internal/shared"
	"qms/internal/storage"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	recorder *events.Recorder
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), t0)
	s.recorder = events.NewRecorder()
	s.service = NewService(storage.NewMemory[*ActionPlan](),
		shared.WithEvents(events.NewEmitter(s.recorder)),
		shared.WithDefaultLimit(2),
	)
}

func (s *ServiceSuite) plan(plannedInDays int) *ActionPlan {
	p, err := s.service.Create(s.ctx, fromFinding())
	s.Require().NoError(err)
	p, err = s.service.AddAction(s.ctx, p.ID, NewAction{
		Description: "Revisar equipo",
		Responsible: "Metrología",
		PlannedDate: t0.AddDate(0, 0, plannedInDays),
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestStatusFilterMatchesOverdueAtRequestTime() {
	late := s.plan(-1)
	s.plan(10)

	page, err := s.service.Search(s.ctx, url.Values{"status": {"overdue"}})
	s.Require().NoError(err)
	s.Require().Equal(1, page.Total)
	s.Equal(late.ID, page.Items[0].ID)

	page, err = s.service.Search(s.ctx, url.Values{"status": {"PENDING"}})
	s.Require().NoError(err)
	s.Equal(1, page.Total, "an overdue plan no longer matches its stored status")

	later := requestcontext.WithTime(s.ctx, t0.AddDate(0, 0, 11))
	page, err = s.service.Search(later, url.Values{"status": {"OVERDUE"}})
	s.Require().NoError(err)
	s.Equal(2, page.Total)
}

func (s *ServiceSuite) TestStatusSortUsesEffectiveStatus() {
	late := s.plan(-1)
	onTime := s.plan(10)

	page, err := s.service.Search(s.ctx, url.Values{"sortBy": {"status"}, "sortOrder": {"asc"}})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 2)
	s.Equal(onTime.ID, page.Items[0].ID)
	s.Equal(late.ID, page.Items[1].ID, "OVERDUE ranks after PENDING")

	page, err = s.service.Search(s.ctx, url.Values{"sortBy": {"status"}, "sortOrder": {"desc"}})
	s.Require().NoError(err)
	s.Equal(late.ID, page.Items[0].ID)
}

func (s *ServiceSuite) TestCompletionRangeAndDefaultLimit() {
	done := s.plan(5)
	_, err := s.service.UpdateAction(s.ctx, done.ID, done.Actions[0].ID, step(ActionCompleted))
	s.Require().NoError(err)
	s.plan(5)
	s.plan(5)

	page, err := s.service.Search(s.ctx, url.Values{"minCompletionPercentage": {"100"}})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal(StatusCompleted, page.Items[0].Status)

	page, err = s.service.Search(s.ctx, url.Values{"maxCompletionPercentage": {"0"}})
	s.Require().NoError(err)
	s.Equal(2, page.Total)

	page, err = s.service.Search(s.ctx, url.Values{})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Len(page.Items, 2, "configured default limit")
	s.Equal(2, page.TotalPages)

	_, err = s.service.Search(s.ctx, url.Values{"minCompletionPercentage": {"half"}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestPagesAreStableAndComplete() {
	seen := map[string]bool{}
	for range 5 {
		s.plan(3)
	}
	for page := 1; page <= 3; page++ {
		q := url.Values{"page": {strconv.Itoa(page)}, "sortBy": {"completionPercentage"}}
		first, err := s.service.Search(s.ctx, q)
		s.Require().NoError(err)
		again, err := s.service.Search(s.ctx, q)
		s.Require().NoError(err)
		s.Equal(first.Items, again.Items)
		s.LessOrEqual(len(first.Items), 2)
		for _, p := range first.Items {
			s.False(seen[p.ID], "plans never repeat across pages")
			seen[p.ID] = true
		}
	}
	s.Len(seen, 5)
}

func (s *ServiceSuite) TestEventsCarryActionID() {
	p := s.plan(3)
	actionID := p.Actions[0].ID
	_, err := s.service.UpdateAction(s.ctx, p.ID, actionID, step(ActionInProgress))
	s.Require().NoError(err)

	got := s.recorder.Events()
	s.Require().Len(got, 3)
	s.Equal("action_plan.action_updated", got[2].Type)
	s.Equal("PENDING", got[2].FromStatus)
	s.Equal("IN_PROGRESS", got[2].ToStatus)
	s.Contains(string(got[1].Data), actionID)
}

func (s *ServiceSuite) TestCancel() {
	p := s.plan(3)
	p, err := s.service.Cancel(s.ctx, p.ID, "Reemplazado")
	s.Require().NoError(err)
	s.Equal(StatusCancelled, p.Status)

	_, err = s.service.AddAction(s.ctx, p.ID, NewAction{Description: "Nueva acción", Responsible: "Calidad", PlannedDate: t0})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}
