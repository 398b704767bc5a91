package clients

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

const label = "Cliente"

type Service struct {
	shared.Base
	clients storage.Collection[*Client]
}

func NewService(clients storage.Collection[*Client], opts ...shared.Option) *Service {
	return &Service{Base: shared.NewBase(opts...), clients: clients}
}

func (s *Service) Create(ctx context.Context, in Fields) (*Client, error) {
	in.CompanyID = shared.CompanyOrClaim(ctx, in.CompanyID)
	c, err := New(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.clients.Insert(ctx, c); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(c, "created", ""))
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return c, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Client], error) {
	return shared.Search(ctx, s.Base, EntityType, s.clients, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Client, error) {
	return s.mutate(ctx, id, "updated", func(c *Client, now time.Time) error {
		return c.Update(p.Merge(c.Fields()), now)
	})
}

func (s *Service) Archive(ctx context.Context, id string) (*Client, error) {
	return s.mutate(ctx, id, "archived", (*Client).Archive)
}

func (s *Service) Restore(ctx context.Context, id string) (*Client, error) {
	return s.mutate(ctx, id, "restored", (*Client).Restore)
}

func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Client, time.Time) error) (*Client, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from string
	c, err := s.clients.Execute(ctx, id, func(c *Client) error {
		from = string(c.Status)
		return fn(c, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(c, action, from))
	return c, nil
}

func event(c *Client, action, from string) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   c.ID,
		CompanyID:  c.CompanyID,
		FromStatus: from,
		ToStatus:   string(c.Status),
		Data:       events.Payload(map[string]any{"name": c.Name}),
	}
}
