package stakeholders

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

const label = "Parte interesada"

type Service struct {
	shared.Base
	stakeholders storage.Collection[*Stakeholder]
}

func NewService(stakeholders storage.Collection[*Stakeholder], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), stakeholders: stakeholders}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Stakeholder, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	st, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.stakeholders.Insert(ctx, st); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(st, "created", ""))
	return st, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Stakeholder, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	st, err := s.stakeholders.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return st, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Stakeholder], error) {
	return shared.Search(ctx, s.Base, EntityType, s.stakeholders, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Stakeholder, error) {
	return s.mutate(ctx, id, "updated", func(st *Stakeholder, now time.Time) error {
		return st.Update(p.Merge(st.Fields()), now)
	})
}

func (s *Service) Archive(ctx context.Context, id string) (*Stakeholder, error) {
	return s.mutate(ctx, id, "archived", (*Stakeholder).Archive)
}

func (s *Service) Restore(ctx context.Context, id string) (*Stakeholder, error) {
	return s.mutate(ctx, id, "restored", (*Stakeholder).Restore)
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Stakeholder, time.Time) error) (*Stakeholder, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from string
	st, err := s.stakeholders.Execute(ctx, id, func(st *Stakeholder) error {
		from = string(st.Status)
		return fn(st, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(st, action, from))
	return st, nil
}

func event(st *Stakeholder, action, from string) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   st.ID,
		CompanyID:  st.CompanyID,
		FromStatus: from,
		ToStatus:   string(st.Status),
		Data:       events.Payload(map[string]any{"priority": st.Priority()}),
	}
}
