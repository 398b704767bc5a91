package handler

import (
	"strings"
	"time"

	"qms/internal/actionplans"
	"qms/pkg/platform/validation"
)

// CreateRequest is the body of POST /action-plans.
type CreateRequest struct {
	CompanyID         string `json:"companyId"`
	CreatedDate       string `json:"createdDate"`
	OriginType        string `json:"originType"`
	OriginID          string `json:"originId"`
	OriginDescription string `json:"originDescription"`
	CreatedBy         string `json:"createdBy"`
	Observations      string `json:"observations"`

	created time.Time
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.OriginType = strings.ToUpper(strings.TrimSpace(r.OriginType))
	r.OriginDescription = strings.TrimSpace(r.OriginDescription)
	r.CreatedBy = strings.TrimSpace(r.CreatedBy)
}

func (r *CreateRequest) Validate() error {
	if err := validation.First(
		validation.Required("companyId", r.CompanyID, "La empresa es obligatoria"),
		validation.Required("originType", r.OriginType, "El tipo de origen es obligatorio"),
		validation.Required("originDescription", r.OriginDescription, "La descripción del origen es obligatoria"),
		validation.Required("createdBy", r.CreatedBy, "El creador es obligatorio"),
	); err != nil {
		return err
	}
	created, err := validation.Date("createdDate", "La fecha de creación", r.CreatedDate)
	if err != nil {
		return err
	}
	r.created = created
	return nil
}

func (r *CreateRequest) Fields() actionplans.Fields {
	return actionplans.Fields{
		CompanyID:         r.CompanyID,
		OriginType:        actionplans.OriginType(r.OriginType),
		OriginID:          r.OriginID,
		OriginDescription: r.OriginDescription,
		CreatedDate:       r.created,
		CreatedBy:         r.CreatedBy,
		Observations:      r.Observations,
	}
}

// UpdateRequest is the body of PUT /action-plans/{id}.
type UpdateRequest struct {
	OriginType        *string `json:"originType"`
	OriginID          *string `json:"originId"`
	OriginDescription *string `json:"originDescription"`
	Observations      *string `json:"observations"`
}

func (r *UpdateRequest) Normalize() {
	if r.OriginType != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.OriginType))
		r.OriginType = &v
	}
}

func (r *UpdateRequest) Validate() error { return nil }

func (r *UpdateRequest) Patch() actionplans.Patch {
	p := actionplans.Patch{
		OriginID:          r.OriginID,
		OriginDescription: r.OriginDescription,
		Observations:      r.Observations,
	}
	if r.OriginType != nil {
		v := actionplans.OriginType(*r.OriginType)
		p.OriginType = &v
	}
	return p
}

// AddActionRequest is the body of POST /action-plans/{id}/actions.
type AddActionRequest struct {
	Description string `json:"description"`
	Responsible string `json:"responsible"`
	PlannedDate string `json:"plannedDate"`

	planned time.Time
}

func (r *AddActionRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
	r.Responsible = strings.TrimSpace(r.Responsible)
}

func (r *AddActionRequest) Validate() error {
	if err := validation.First(
		validation.Required("description", r.Description, "La descripción es obligatoria"),
		validation.Required("responsible", r.Responsible, "El responsable es obligatorio"),
	); err != nil {
		return err
	}
	planned, err := validation.Date("plannedDate", "La fecha planificada", r.PlannedDate)
	if err != nil {
		return err
	}
	r.planned = planned
	return nil
}

func (r *AddActionRequest) Action() actionplans.NewAction {
	return actionplans.NewAction{Description: r.Description, Responsible: r.Responsible, PlannedDate: r.planned}
}

// UpdateActionRequest is the body of PATCH /action-plans/{id}/actions/{actionId}.
type UpdateActionRequest struct {
	Status      *string `json:"status"`
	Description *string `json:"description"`
	Responsible *string `json:"responsible"`
	PlannedDate *string `json:"plannedDate"`
	Evidence    *string `json:"evidence"`

	planned *time.Time
}

func (r *UpdateActionRequest) Normalize() {
	if r.Status != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.Status))
		r.Status = &v
	}
}

func (r *UpdateActionRequest) Validate() error {
	if r.PlannedDate == nil {
		return nil
	}
	planned, err := validation.Date("plannedDate", "La fecha planificada", *r.PlannedDate)
	if err != nil {
		return err
	}
	r.planned = &planned
	return nil
}

func (r *UpdateActionRequest) Patch() actionplans.ActionPatch {
	p := actionplans.ActionPatch{
		Description: r.Description,
		Responsible: r.Responsible,
		PlannedDate: r.planned,
		Evidence:    r.Evidence,
	}
	if r.Status != nil {
		v := actionplans.ActionStatus(*r.Status)
		p.Status = &v
	}
	return p
}

// CancelRequest is the optional body of POST /action-plans/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *CancelRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}
