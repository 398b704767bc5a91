package handler

import (
	"strings"
	"time"

	"qms/internal/documents"
	"qms/pkg/platform/validation"
)

// CreateRequest is the body of POST /documents.
type CreateRequest struct {
	CompanyID   string `json:"companyId"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Author      string `json:"author"`
	ProcessID   string `json:"processId"`
	ExpiryDate  string `json:"expiryDate"`

	expiry *time.Time
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Code = strings.TrimSpace(r.Code)
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Author = strings.TrimSpace(r.Author)
	r.ProcessID = strings.TrimSpace(r.ProcessID)
}

func (r *CreateRequest) Validate() error {
	if err := validation.Required("companyId", r.CompanyID, "La empresa es obligatoria"); err != nil {
		return err
	}
	if err := validation.Required("type", r.Type, "El tipo de documento es obligatorio"); err != nil {
		return err
	}
	expiry, err := validation.OptionalDate("expiryDate", "La fecha de vencimiento", r.ExpiryDate)
	if err != nil {
		return err
	}
	r.expiry = expiry
	return nil
}

func (r *CreateRequest) Fields() documents.Fields {
	return documents.Fields{
		CompanyID:   r.CompanyID,
		Code:        r.Code,
		Title:       r.Title,
		Type:        documents.Type(r.Type),
		Description: r.Description,
		Author:      r.Author,
		ProcessID:   r.ProcessID,
		ExpiryDate:  r.expiry,
	}
}

// UpdateRequest is the body of PUT /documents/{id}. Omitted fields keep
// their value.
type UpdateRequest struct {
	Code        *string `json:"code"`
	Title       *string `json:"title"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Author      *string `json:"author"`
	ProcessID   *string `json:"processId"`
	ExpiryDate  *string `json:"expiryDate"`

	expiry *time.Time
}

func (r *UpdateRequest) Normalize() {
	if r.Type != nil {
		upper := strings.ToUpper(strings.TrimSpace(*r.Type))
		r.Type = &upper
	}
}

func (r *UpdateRequest) Validate() error {
	if r.ExpiryDate == nil {
		return nil
	}
	expiry, err := validation.Date("expiryDate", "La fecha de vencimiento", *r.ExpiryDate)
	if err != nil {
		return err
	}
	r.expiry = &expiry
	return nil
}

func (r *UpdateRequest) Patch() documents.Patch {
	p := documents.Patch{
		Code:        r.Code,
		Title:       r.Title,
		Description: r.Description,
		Author:      r.Author,
		ProcessID:   r.ProcessID,
		ExpiryDate:  r.expiry,
	}
	if r.Type != nil {
		t := documents.Type(*r.Type)
		p.Type = &t
	}
	return p
}

// ApproveRequest is the optional body of POST /documents/{id}/approve.
type ApproveRequest struct {
	ApprovedBy string `json:"approvedBy"`
}

func (r *ApproveRequest) Normalize() { r.ApprovedBy = strings.TrimSpace(r.ApprovedBy) }

func (r *ApproveRequest) Validate() error {
	return validation.MaxLength("approvedBy", "El aprobador", r.ApprovedBy, validation.MaxShortText)
}

// RejectRequest is the optional body of POST /documents/{id}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *RejectRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}
