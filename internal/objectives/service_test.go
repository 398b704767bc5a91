package objectives

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"

	"qms/internal/platform/events"
	"qms/internal/shared"
	"qms/internal/storage"
	"qms/internal/storage/storagetest"
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
	s.ctx = requestcontext.WithUserID(requestcontext.WithTime(context.Background(), t0), "ana@acme.test")
	s.recorder = events.NewRecorder()
	s.service = NewService(storage.NewMemory[*Objective](), shared.WithEvents(events.NewEmitter(s.recorder)))
}

func (s *ServiceSuite) create(target float64) *Objective {
	f := satisfaction()
	f.TargetValue = target
	o, err := s.service.Create(s.ctx, f)
	s.Require().NoError(err)
	return o
}

func (s *ServiceSuite) TestProgressLifecycle() {
	o := s.create(100)
	o, err := s.service.RecordProgress(s.ctx, o.ID, Progress{Value: 100})
	s.Require().NoError(err)
	s.Equal("ana@acme.test", o.Measurements[0].RecordedBy)

	o, err = s.service.AddComment(s.ctx, o.ID, "", "Meta alcanzada antes de tiempo")
	s.Require().NoError(err)
	s.Equal("ana@acme.test", o.Comments[0].Author)

	o, err = s.service.Close(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(StatusAchieved, o.Status)

	s.Equal([]string{
		"objective.created", "objective.progress_recorded",
		"objective.comment_added", "objective.closed",
	}, s.recorder.Types())
}

func (s *ServiceSuite) TestSearchByProgressAndOverdue() {
	half := s.create(100)
	_, err := s.service.RecordProgress(s.ctx, half.ID, Progress{Value: 50})
	s.Require().NoError(err)
	s.create(100)

	page, err := s.service.Search(s.ctx, url.Values{"minProgress": {"50"}})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal(half.ID, page.Items[0].ID)

	late := requestcontext.WithTime(s.ctx, t0.AddDate(1, 0, 0))
	page, err = s.service.Search(late, url.Values{"overdue": {"true"}})
	s.Require().NoError(err)
	s.Equal(2, page.Total)

	page, err = s.service.Search(s.ctx, url.Values{"overdue": {"true"}})
	s.Require().NoError(err)
	s.Zero(page.Total)

	_, err = s.service.Search(s.ctx, url.Values{"status": {"DONE"}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestIllegalTransitionIsNotPersisted() {
	o := s.create(10)
	_, err := s.service.Close(s.ctx, o.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	got, err := s.service.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(StatusPlanned, got.Status)
	s.Equal(o.UpdatedAt, got.UpdatedAt)
}

func (s *ServiceSuite) TestNotFoundAndStoreFailure() {
	_, err := s.service.Start(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	broken := NewService(storagetest.Failing[*Objective]{})
	_, err = broken.Search(s.ctx, url.Values{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
