// Package clients keeps the customer master list.
package clients

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "client"

type Client struct {
	ID        string              `json:"id"`
	CompanyID string              `json:"companyId"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone,omitempty"`
	Address   string              `json:"address,omitempty"`
	Contact   string              `json:"contact,omitempty"`
	TaxID     string              `json:"taxId,omitempty"`
	Status    domain.RecordStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func (c *Client) RecordID() string { return c.ID }

type Fields struct {
	CompanyID string
	Name      string
	Email     string
	Phone     string
	Address   string
	Contact   string
	TaxID     string
}

func (f Fields) validate() error {
	return validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("name", "El nombre", f.Name, 2),
		validation.MaxLength("name", "El nombre", f.Name, validation.MaxShortText),
		validation.Email("email", f.Email),
		validation.MaxLength("phone", "El teléfono", f.Phone, 50),
		validation.MaxLength("address", "La dirección", f.Address, validation.MaxShortText),
	)
}

func New(f Fields, now time.Time) (*Client, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	c := &Client{
		ID:        domain.NewID(),
		Status:    domain.RecordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.apply(f)
	return c, nil
}

func (c *Client) apply(f Fields) {
	c.CompanyID = strings.TrimSpace(f.CompanyID)
	c.Name = strings.TrimSpace(f.Name)
	c.Email = strings.ToLower(strings.TrimSpace(f.Email))
	c.Phone = strings.TrimSpace(f.Phone)
	c.Address = strings.TrimSpace(f.Address)
	c.Contact = strings.TrimSpace(f.Contact)
	c.TaxID = strings.TrimSpace(f.TaxID)
}

func (c *Client) Fields() Fields {
	return Fields{
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Contact:   c.Contact,
		TaxID:     c.TaxID,
	}
}

type Patch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Contact *string
	TaxID   *string
}

func (p Patch) Merge(f Fields) Fields {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	if p.Contact != nil {
		f.Contact = *p.Contact
	}
	if p.TaxID != nil {
		f.TaxID = *p.TaxID
	}
	return f
}

// Update edits an active client. Archived clients must be restored first.
func (c *Client) Update(f Fields, now time.Time) error {
	if c.Status == domain.RecordArchived {
		return dErrors.InvalidTransition(EntityType, string(c.Status), string(c.Status))
	}
	if err := f.validate(); err != nil {
		return err
	}
	c.apply(f)
	c.touch(now)
	return nil
}

func (c *Client) Archive(now time.Time) error { return c.moveTo(domain.RecordArchived, now) }
func (c *Client) Restore(now time.Time) error { return c.moveTo(domain.RecordActive, now) }

func (c *Client) moveTo(next domain.RecordStatus, now time.Time) error {
	if !c.Status.CanTransitionTo(next) {
		return dErrors.InvalidTransition(EntityType, string(c.Status), string(next))
	}
	c.Status = next
	c.touch(now)
	return nil
}

func (c *Client) touch(now time.Time) {
	c.UpdatedAt = domain.Touch(c.UpdatedAt, now)
}
