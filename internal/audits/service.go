package audits

import (
	"context"
	"net/url"
	"time"

	"qms/internal/platform/events"
	"qms/internal/shared"
	"qms/internal/storage"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

const label = "Auditoría"

type Service struct {
	shared.Base
	audits storage.Collection[*Audit]
}

func NewService(audits storage.Collection[*Audit], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), audits: audits}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Audit, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	a, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.audits.Insert(ctx, a); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(a, "created", ""))
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Audit, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	a, err := s.audits.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return a, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Audit], error) {
	return shared.Search(ctx, s.Base, EntityType, s.audits, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Audit, error) {
	return s.mutate(ctx, id, "updated", func(a *Audit, now time.Time) error {
		return a.Update(p.Merge(a.Fields()), now)
	})
}

func (s *Service) Start(ctx context.Context, id string) (*Audit, error) {
	return s.mutate(ctx, id, "started", (*Audit).Start)
}

func (s *Service) Complete(ctx context.Context, id string, c Completion) (*Audit, error) {
	return s.mutate(ctx, id, "completed", func(a *Audit, now time.Time) error {
		return a.Complete(c, now)
	})
}

func (s *Service) Cancel(ctx context.Context, id, reason string) (*Audit, error) {
	return s.mutate(ctx, id, "cancelled", func(a *Audit, now time.Time) error {
		return a.Cancel(reason, now)
	})
}

func (s *Service) Reschedule(ctx context.Context, id string, to time.Time, reason string) (*Audit, error) {
	return s.mutate(ctx, id, "rescheduled", func(a *Audit, now time.Time) error {
		return a.Reschedule(to, reason, now)
	})
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Audit, time.Time) error) (*Audit, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	a, err := s.audits.Execute(ctx, id, func(a *Audit) error {
		from = a.Status
		return fn(a, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(a, action, from))
	return a, nil
}

func event(a *Audit, action string, from Status) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   a.ID,
		CompanyID:  a.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(a.Status),
		Data: events.Payload(map[string]any{
			"type":        a.Type,
			"plannedDate": a.PlannedDate,
			"findings":    len(a.FindingIDs),
		}),
	}
}
