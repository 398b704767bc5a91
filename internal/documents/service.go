package documents

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

const label = "Documento"

// Service runs the document use cases against a collection.
type Service struct {
	shared.Base
	documents storage.Collection[*Document]
}

func NewService(documents storage.Collection[*Document], opts ...shared.Option) *Service {
	return &Service{
		Base:      shared.NewBase(opts...),
		documents: documents,
	}
}

func (s *Service) Create(ctx context.Context, f Fields) (*Document, error) {
	f.CompanyID = shared.CompanyOrClaim(ctx, f.CompanyID)
	doc, err := New(f, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Created(ctx, event(doc, "created", ""))
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	return doc, nil
}

func (s *Service) Search(ctx context.Context, values url.Values) (search.Page[*Document], error) {
	return shared.Search(ctx, s.Base, EntityType, s.documents, Schema, values)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Document, error) {
	return s.mutate(ctx, id, "updated", func(d *Document, now time.Time) error {
		return d.Update(p.Merge(d.Fields()), now)
	})
}

func (s *Service) SendToReview(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, id, "sent_to_review", (*Document).SendToReview)
}

// Approve records approvedBy, falling back to the authenticated user.
func (s *Service) Approve(ctx context.Context, id, approvedBy string) (*Document, error) {
	if approvedBy == "" {
		approvedBy = requestcontext.UserID(ctx)
	}
	return s.mutate(ctx, id, "approved", func(d *Document, now time.Time) error {
		return d.Approve(approvedBy, now)
	})
}

func (s *Service) Reject(ctx context.Context, id, reason string) (*Document, error) {
	return s.mutate(ctx, id, "rejected", func(d *Document, now time.Time) error {
		return d.Reject(reason, now)
	})
}

func (s *Service) Archive(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, id, "archived", (*Document).Archive)
}

func (s *Service) Restore(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, id, "restored", (*Document).Restore)
}

func (s *Service) IncrementVersion(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, id, "version_incremented", (*Document).IncrementVersion)
}

// mutate applies fn atomically and reports the change once it is stored.
func (s *Service) mutate(ctx context.Context, id, action string, fn func(*Document, time.Time) error) (*Document, error) {
	if err := shared.RequireID(id); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var from Status
	doc, err := s.documents.Execute(ctx, id, func(d *Document) error {
		from = d.Status
		return fn(d, now)
	})
	if err != nil {
		return nil, shared.StoreErr(err, label)
	}
	s.Changed(ctx, event(doc, action, from))
	return doc, nil
}

func event(d *Document, action string, from Status) events.Event {
	return events.Event{
		Type:       events.Type(EntityType, action),
		EntityType: EntityType,
		EntityID:   d.ID,
		CompanyID:  d.CompanyID,
		FromStatus: string(from),
		ToStatus:   string(d.Status),
		Data: events.Payload(map[string]string{
			"code":    d.Code,
			"version": d.Version,
		}),
	}
}
