package actionplans

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

const label = "Plan de acción"

type Service struct {
	shared.Base
	plans storage.Collection[*ActionPlan]
}

func NewService(plans storage.Collection[*ActionPlan], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), plans: plans}
}

func (s *Service) Create(ctx context.Context, in Fields) (*ActionPlan, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	p, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.plans.Insert(ctx, p); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(p, "created", "", nil))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ActionPlan, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	p, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return p, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*ActionPlan], error) {
	return shared.Search(ctx, s.Base, EntityType, s.plans, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*ActionPlan, error) {
	return s.mutate(ctx, id, "updated", nil, func(p *ActionPlan, now time.Time) error {
		return p.Update(patch.Merge(p.Fields()), now)
	})
}

func (s *Service) AddAction(ctx context.Context, id string, in NewAction) (*ActionPlan, error) {
	var actionID string
	return s.mutate(ctx, id, "action_added", &actionID, func(p *ActionPlan, now time.Time) error {
		a, err := p.AddAction(in, now)
		actionID = a.ID
		return err
	})
}

func (s *Service) UpdateAction(ctx context.Context, id, actionID string, patch ActionPatch) (*ActionPlan, error) {
	return s.mutate(ctx, id, "action_updated", &actionID, func(p *ActionPlan, now time.Time) error {
		return p.UpdateAction(actionID, patch, now)
	})
}

func (s *Service) Cancel(ctx context.Context, id, reason string) (*ActionPlan, error) {
	return s.mutate(ctx, id, "cancelled", nil, func(p *ActionPlan, now time.Time) error {
		return p.Cancel(reason, now)
	})
}

// mutate applies fn atomically. actionID is read after fn runs.
func (s *Service) mutate(ctx context.Context, id, action string, actionID *string, fn func(*ActionPlan, time.Time) error) (*ActionPlan, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	p, err := s.plans.Execute(ctx, id, func(p *ActionPlan) error {
		from = p.Status
		return fn(p, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(p, action, from, actionID))
	return p, nil
}

func event(p *ActionPlan, action string, from Status, actionID *string) events.Event {
	data := map[string]any{
		"originType":           p.OriginType,
		"completionPercentage": p.CompletionPercentage,
	}
	if actionID != nil {
		data["actionId"] = *actionID
	}
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   p.ID,
		CompanyID:  p.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(p.Status),
		Data:       events.Payload(data),
	}
}
