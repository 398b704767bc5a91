package handler

import (
	"strings"
	"time"

	"qms/internal/findings"
	"qms/pkg/platform/validation"
)

type CreateRequest struct {
	CompanyID    string `json:"companyId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Source       string `json:"source"`
	Severity     string `json:"severity"`
	ProcessID    string `json:"processId"`
	AuditID      string `json:"auditId"`
	DetectedBy   string `json:"detectedBy"`
	DetectedDate string `json:"detectedDate"`
	RootCause    string `json:"rootCause"`

	detected time.Time
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Source = strings.ToUpper(strings.TrimSpace(r.Source))
	r.Severity = strings.ToUpper(strings.TrimSpace(r.Severity))
}

func (r *CreateRequest) Validate() error {
	if err := validation.Required("companyId", r.CompanyID, "La empresa es obligatoria"); err != nil {
		return err
	}
	detected, err := validation.Date("detectedDate", "La fecha de detección", r.DetectedDate)
	if err != nil {
		return err
	}
	r.detected = detected
	return nil
}

func (r *CreateRequest) Fields() findings.Fields {
	return findings.Fields{
		CompanyID:    r.CompanyID,
		Title:        r.Title,
		Description:  r.Description,
		Type:         findings.Type(r.Type),
		Source:       findings.Source(r.Source),
		Severity:     findings.Severity(r.Severity),
		ProcessID:    r.ProcessID,
		AuditID:      r.AuditID,
		DetectedBy:   r.DetectedBy,
		DetectedDate: r.detected,
		RootCause:    r.RootCause,
	}
}

type UpdateRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Type         *string `json:"type"`
	Source       *string `json:"source"`
	Severity     *string `json:"severity"`
	ProcessID    *string `json:"processId"`
	DetectedDate *string `json:"detectedDate"`
	RootCause    *string `json:"rootCause"`

	detected *time.Time
}

func (r *UpdateRequest) Normalize() {
	for _, p := range []*string{r.Type, r.Source, r.Severity} {
		if p != nil {
			*p = strings.ToUpper(strings.TrimSpace(*p))
		}
	}
}

func (r *UpdateRequest) Validate() error {
	if r.DetectedDate == nil {
		return nil
	}
	detected, err := validation.Date("detectedDate", "La fecha de detección", *r.DetectedDate)
	if err != nil {
		return err
	}
	r.detected = &detected
	return nil
}

func (r *UpdateRequest) Patch() findings.Patch {
	p := findings.Patch{
		Title:        r.Title,
		Description:  r.Description,
		ProcessID:    r.ProcessID,
		DetectedDate: r.detected,
		RootCause:    r.RootCause,
	}
	if r.Type != nil {
		v := findings.Type(*r.Type)
		p.Type = &v
	}
	if r.Source != nil {
		v := findings.Source(*r.Source)
		p.Source = &v
	}
	if r.Severity != nil {
		v := findings.Severity(*r.Severity)
		p.Severity = &v
	}
	return p
}

// AddActionRequest is the body of POST /findings/{id}/actions.
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
	if err := validation.Required("description", r.Description, "La descripción es obligatoria"); err != nil {
		return err
	}
	if err := validation.Required("responsible", r.Responsible, "El responsable es obligatorio"); err != nil {
		return err
	}
	planned, err := validation.Date("plannedDate", "La fecha planificada", r.PlannedDate)
	if err != nil {
		return err
	}
	r.planned = planned
	return nil
}

func (r *AddActionRequest) Action() findings.NewAction {
	return findings.NewAction{Description: r.Description, Responsible: r.Responsible, PlannedDate: r.planned}
}

// VerifyRequest is the optional body of the verify endpoint.
type VerifyRequest struct {
	VerifiedBy string `json:"verifiedBy"`
}

func (r *VerifyRequest) Normalize() { r.VerifiedBy = strings.TrimSpace(r.VerifiedBy) }

func (r *VerifyRequest) Validate() error {
	return validation.MaxLength("verifiedBy", "Quien verifica", r.VerifiedBy, validation.MaxShortText)
}

// CancelRequest is the optional body of POST /findings/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *CancelRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}
