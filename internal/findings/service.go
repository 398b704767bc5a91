package findings

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

const label = "Hallazgo"

type Service struct {
	shared.Base
	findings storage.Collection[*Finding]
}

func NewService(findings storage.Collection[*Finding], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), findings: findings}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Finding, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	f, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.findings.Insert(ctx, f); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(f, "created", "", nil))
	return f, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Finding, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	f, err := s.findings.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return f, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Finding], error) {
	return shared.Search(ctx, s.Base, EntityType, s.findings, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Finding, error) {
	return s.mutate(ctx, id, "updated", nil, func(f *Finding, now time.Time) error {
		return f.Update(p.Merge(f.Fields()), now)
	})
}

func (s *Service) AddAction(ctx context.Context, id string, in NewAction) (*Finding, error) {
	var actionID string
	f, err := s.mutate(ctx, id, "action_added", &actionID, func(f *Finding, now time.Time) error {
		a, err := f.AddAction(in, now)
		if err != nil {
			return err
		}
		actionID = a.ID
		return nil
	})
	return f, err
}

func (s *Service) CompleteAction(ctx context.Context, id, actionID string) (*Finding, error) {
	return s.mutate(ctx, id, "action_completed", &actionID, func(f *Finding, now time.Time) error {
		return f.CompleteAction(actionID, now)
	})
}

// VerifyAction records verifiedBy, falling back to the authenticated user.
func (s *Service) VerifyAction(ctx context.Context, id, actionID, verifiedBy string) (*Finding, error) {
	if verifiedBy == "" {
		verifiedBy = requestcontext.UserID(ctx)
	}
	return s.mutate(ctx, id, "action_verified", &actionID, func(f *Finding, now time.Time) error {
		return f.VerifyAction(actionID, verifiedBy, now)
	})
}

func (s *Service) Close(ctx context.Context, id string) (*Finding, error) {
	return s.mutate(ctx, id, "closed", nil, (*Finding).Close)
}

func (s *Service) Cancel(ctx context.Context, id, reason string) (*Finding, error) {
	return s.mutate(ctx, id, "cancelled", nil, func(f *Finding, now time.Time) error {
		return f.Cancel(reason, now)
	})
}

// mutate applies fn atomically. actionID, when set, is read after fn runs
// so callbacks may fill it in.
func (s *Service) mutate(ctx context.Context, id, action string, actionID *string, fn func(*Finding, time.Time) error) (*Finding, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	f, err := s.findings.Execute(ctx, id, func(f *Finding) error {
		from = f.Status
		return fn(f, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(f, action, from, actionID))
	return f, nil
}

func event(f *Finding, action string, from Status, actionID *string) events.Event {
	data := map[string]any{"severity": f.Severity, "actions": len(f.Actions)}
	if actionID != nil {
		data["actionId"] = *actionID
	}
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   f.ID,
		CompanyID:  f.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(f.Status),
		Data:       events.Payload(data),
	}
}
