package risks

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

const label = "Riesgo"

type Service struct {
	shared.Base
	risks storage.Collection[*Risk]
}

func NewService(risks storage.Collection[*Risk], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), risks: risks}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Risk, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	r, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.risks.Insert(ctx, r); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(r, "created", ""))
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Risk, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	r, err := s.risks.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return r, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Risk], error) {
	return shared.Search(ctx, s.Base, EntityType, s.risks, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Risk, error) {
	return s.mutate(ctx, id, "updated", func(r *Risk, now time.Time) error {
		return r.Update(p.Merge(r.Fields()), now)
	})
}

func (s *Service) AddControl(ctx context.Context, id string, in ControlInput) (*Risk, error) {
	return s.mutate(ctx, id, "control_added", func(r *Risk, now time.Time) error {
		_, err := r.AddControl(in, now)
		return err
	})
}

func (s *Service) ReviewControl(ctx context.Context, id, controlID string, rv Review) (*Risk, error) {
	return s.mutate(ctx, id, "control_reviewed", func(r *Risk, now time.Time) error {
		_, err := r.ReviewControl(controlID, rv, now)
		return err
	})
}

func (s *Service) MarkControlled(ctx context.Context, id string) (*Risk, error) {
	return s.mutate(ctx, id, "controlled", (*Risk).MarkControlled)
}

func (s *Service) Close(ctx context.Context, id, reason string) (*Risk, error) {
	return s.mutate(ctx, id, "closed", func(r *Risk, now time.Time) error {
		return r.Close(reason, now)
	})
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Risk, time.Time) error) (*Risk, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	r, err := s.risks.Execute(ctx, id, func(r *Risk) error {
		from = r.Status
		return fn(r, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(r, action, from))
	return r, nil
}

func event(r *Risk, action string, from Status) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   r.ID,
		CompanyID:  r.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(r.Status),
		Data: events.Payload(map[string]any{
			"level":    r.Level(),
			"rating":   r.Rating(),
			"controls": len(r.Controls),
		}),
	}
}
