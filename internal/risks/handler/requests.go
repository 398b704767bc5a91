package handler

import (
	"strings"
	"time"

	"qms/internal/risks"
	"qms/pkg/platform/validation"
)

type CreateRequest struct {
	CompanyID   string `json:"companyId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ProcessID   string `json:"processId"`
	Owner       string `json:"owner"`
	Probability int    `json:"probability"`
	Impact      int    `json:"impact"`
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
}

func (r *CreateRequest) Validate() error {
	return validation.Required("companyId", r.CompanyID, "La empresa es obligatoria")
}

func (r *CreateRequest) Fields() risks.Fields {
	return risks.Fields{
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ProcessID:   r.ProcessID,
		Owner:       r.Owner,
		Probability: r.Probability,
		Impact:      r.Impact,
	}
}

type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ProcessID   *string `json:"processId"`
	Owner       *string `json:"owner"`
	Probability *int    `json:"probability"`
	Impact      *int    `json:"impact"`
}

func (r *UpdateRequest) Normalize() {}

func (r *UpdateRequest) Validate() error { return nil }

func (r *UpdateRequest) Patch() risks.Patch {
	return risks.Patch{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ProcessID:   r.ProcessID,
		Owner:       r.Owner,
		Probability: r.Probability,
		Impact:      r.Impact,
	}
}

type ControlRequest struct {
	Description    string `json:"description"`
	Type           string `json:"type"`
	Responsible    string `json:"responsible"`
	NextReviewDate string `json:"nextReviewDate"`

	next *time.Time
}

func (r *ControlRequest) Normalize() {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
}

func (r *ControlRequest) Validate() error {
	next, err := validation.OptionalDate("nextReviewDate", "La próxima revisión", r.NextReviewDate)
	if err != nil {
		return err
	}
	r.next = next
	return nil
}

func (r *ControlRequest) Input() risks.ControlInput {
	return risks.ControlInput{
		Description:    r.Description,
		Type:           risks.ControlType(r.Type),
		Responsible:    r.Responsible,
		NextReviewDate: r.next,
	}
}

type ReviewRequest struct {
	Effective      *bool  `json:"effective"`
	Note           string `json:"note"`
	NextReviewDate string `json:"nextReviewDate"`

	next *time.Time
}

func (r *ReviewRequest) Normalize() {}

func (r *ReviewRequest) Validate() error {
	if r.Effective == nil {
		return validation.Required("effective", "", "Indique si el control es eficaz")
	}
	next, err := validation.OptionalDate("nextReviewDate", "La próxima revisión", r.NextReviewDate)
	if err != nil {
		return err
	}
	r.next = next
	return nil
}

func (r *ReviewRequest) Review() risks.Review {
	return risks.Review{Effective: *r.Effective, Note: r.Note, Next: r.next}
}

type CloseRequest struct {
	Reason string `json:"reason"`
}

func (r *CloseRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *CloseRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}
