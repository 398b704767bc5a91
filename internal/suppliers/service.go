package suppliers

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

const label = "Proveedor"

type Service struct {
	shared.Base
	suppliers storage.Collection[*Supplier]
}

func NewService(suppliers storage.Collection[*Supplier], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), suppliers: suppliers}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Supplier, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	sp, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.Insert(ctx, sp); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(sp, "created", ""))
	return sp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Supplier, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	sp, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return sp, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Supplier], error) {
	return shared.Search(ctx, s.Base, EntityType, s.suppliers, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Supplier, error) {
	return s.mutate(ctx, id, "updated", func(sp *Supplier, now time.Time) error {
		return sp.Update(p.Merge(sp.Fields()), now)
	})
}

// UpdateEvaluation scores the supplier. The event carries the estado before
// and after so consumers can react to approval changes.
func (s *Service) UpdateEvaluation(ctx context.Context, id string, in EvaluationInput) (*Supplier, error) {
	if in.Evaluador == "" {
		in.Evaluador = requestcontext.UserID(ctx)
	}
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var before Estado
	sp, err := s.suppliers.Execute(ctx, id, func(sp *Supplier) error {
		before = sp.Estado()
		_, err := sp.UpdateEvaluation(in, now)
		return err
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	ev := event(sp, "evaluated", string(before))
	ev.ToStatus = string(sp.Estado())
	s.Changed(ctx, ev)
	return sp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*Supplier, error) {
	return s.mutate(ctx, id, "archived", (*Supplier).Archive)
}

func (s *Service) Restore(ctx context.Context, id string) (*Supplier, error) {
	return s.mutate(ctx, id, "restored", (*Supplier).Restore)
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Supplier, time.Time) error) (*Supplier, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from string
	sp, err := s.suppliers.Execute(ctx, id, func(sp *Supplier) error {
		from = string(sp.Status)
		return fn(sp, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(sp, action, from))
	return sp, nil
}

func event(sp *Supplier, action, from string) events.Event {
	data := map[string]any{"estado": sp.Estado()}
	if sp.Evaluacion != nil {
		data["evaluacion"] = *sp.Evaluacion
	}
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   sp.ID,
		CompanyID:  sp.CompanyID,
		FromStatus: from,
		ToStatus:   string(sp.Status),
		Data:       events.Payload(data),
	}
}
