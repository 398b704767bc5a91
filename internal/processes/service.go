package processes

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

const label = "Proceso"

type Service struct {
	shared.Base
	processes storage.Collection[*Process]
}

func NewService(processes storage.Collection[*Process], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), processes: processes}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Process, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	p, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.processes.Insert(ctx, p); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(p, "created", ""))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Process, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	p, err := s.processes.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return p, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Process], error) {
	return shared.Search(ctx, s.Base, EntityType, s.processes, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Process, error) {
	return s.mutate(ctx, id, "updated", func(p *Process, now time.Time) error {
		return p.Update(patch.Merge(p.Fields()), now)
	})
}

func (s *Service) Archive(ctx context.Context, id string) (*Process, error) {
	return s.mutate(ctx, id, "archived", (*Process).Archive)
}

func (s *Service) Restore(ctx context.Context, id string) (*Process, error) {
	return s.mutate(ctx, id, "restored", (*Process).Restore)
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Process, time.Time) error) (*Process, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from string
	p, err := s.processes.Execute(ctx, id, func(p *Process) error {
		from = string(p.Status)
		return fn(p, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(p, action, from))
	return p, nil
}

func event(p *Process, action, from string) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   p.ID,
		CompanyID:  p.CompanyID,
		FromStatus: from,
		ToStatus:   string(p.Status),
		Data:       events.Payload(map[string]any{"code": p.Code, "type": p.Type}),
	}
}
