package objectives

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

const label = "Objetivo"

type Service struct {
	shared.Base
	objectives storage.Collection[*Objective]
}

func NewService(objectives storage.Collection[*Objective], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), objectives: objectives}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Objective, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	o, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.objectives.Insert(ctx, o); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(o, "created", ""))
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Objective, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	o, err := s.objectives.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return o, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Objective], error) {
	return shared.Search(ctx, s.Base, EntityType, s.objectives, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Objective, error) {
	return s.mutate(ctx, id, "updated", func(o *Objective, now time.Time) error {
		return o.Update(p.Merge(o.Fields()), now)
	})
}

func (s *Service) Start(ctx context.Context, id string) (*Objective, error) {
	return s.mutate(ctx, id, "started", (*Objective).Start)
}

// RecordProgress stores a reading; recordedBy defaults to the caller.
func (s *Service) RecordProgress(ctx context.Context, id string, p Progress) (*Objective, error) {
	if p.RecordedBy == "" {
		p.RecordedBy = requestcontext.UserID(ctx)
	}
	return s.mutate(ctx, id, "progress_recorded", func(o *Objective, now time.Time) error {
		return o.RecordProgress(p, now)
	})
}

func (s *Service) AddComment(ctx context.Context, id, author, text string) (*Objective, error) {
	if author == "" {
		author = requestcontext.UserID(ctx)
	}
	return s.mutate(ctx, id, "comment_added", func(o *Objective, now time.Time) error {
		_, err := o.AddComment(author, text, now)
		return err
	})
}

func (s *Service) Close(ctx context.Context, id string) (*Objective, error) {
	return s.mutate(ctx, id, "closed", (*Objective).Close)
}

func (s *Service) Cancel(ctx context.Context, id, reason string) (*Objective, error) {
	return s.mutate(ctx, id, "cancelled", func(o *Objective, now time.Time) error {
		return o.Cancel(reason, now)
	})
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Objective, time.Time) error) (*Objective, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	o, err := s.objectives.Execute(ctx, id, func(o *Objective) error {
		from = o.Status
		return fn(o, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(o, action, from))
	return o, nil
}

func event(o *Objective, action string, from Status) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   o.ID,
		CompanyID:  o.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(o.Status),
		Data: events.Payload(map[string]any{
			"currentValue": o.CurrentValue,
			"targetValue":  o.TargetValue,
			"progress":     o.Progress(),
		}),
	}
}
