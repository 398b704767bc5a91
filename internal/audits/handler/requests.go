package handler

import (
	"strings"
	"time"

	"qms/internal/audits"
	"qms/pkg/platform/validation"
)

type CreateRequest struct {
	CompanyID   string   `json:"companyId"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Scope       string   `json:"scope"`
	Standard    string   `json:"standard"`
	ProcessID   string   `json:"processId"`
	LeadAuditor string   `json:"leadAuditor"`
	Team        []string `json:"team"`
	Auditee     string   `json:"auditee"`
	PlannedDate string   `json:"plannedDate"`

	planned time.Time
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
}

func (r *CreateRequest) Validate() error {
	if err := validation.First(
		validation.Required("companyId", r.CompanyID, "La empresa es obligatoria"),
		validation.Required("plannedDate", r.PlannedDate, "La fecha planificada es obligatoria"),
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

func (r *CreateRequest) Fields() audits.Fields {
	return audits.Fields{
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Type:        audits.Type(r.Type),
		Scope:       r.Scope,
		Standard:    r.Standard,
		ProcessID:   r.ProcessID,
		LeadAuditor: r.LeadAuditor,
		Team:        r.Team,
		Auditee:     r.Auditee,
		PlannedDate: r.planned,
	}
}

type UpdateRequest struct {
	Title       *string  `json:"title"`
	Type        *string  `json:"type"`
	Scope       *string  `json:"scope"`
	Standard    *string  `json:"standard"`
	ProcessID   *string  `json:"processId"`
	LeadAuditor *string  `json:"leadAuditor"`
	Team        []string `json:"team"`
	Auditee     *string  `json:"auditee"`
}

func (r *UpdateRequest) Normalize() {
	if r.Type != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.Type))
		r.Type = &v
	}
}

func (r *UpdateRequest) Validate() error { return nil }

func (r *UpdateRequest) Patch() audits.Patch {
	p := audits.Patch{
		Title:       r.Title,
		Scope:       r.Scope,
		Standard:    r.Standard,
		ProcessID:   r.ProcessID,
		LeadAuditor: r.LeadAuditor,
		Team:        r.Team,
		Auditee:     r.Auditee,
	}
	if r.Type != nil {
		t := audits.Type(*r.Type)
		p.Type = &t
	}
	return p
}

type CompleteRequest struct {
	Conclusions string   `json:"conclusions"`
	FindingIDs  []string `json:"findingIds"`
}

func (r *CompleteRequest) Normalize() {
	r.Conclusions = strings.TrimSpace(r.Conclusions)
}

func (r *CompleteRequest) Validate() error {
	return validation.Required("conclusions", r.Conclusions, "Las conclusiones son obligatorias")
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *CancelRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}

type RescheduleRequest struct {
	PlannedDate string `json:"plannedDate"`
	Reason      string `json:"reason"`

	planned time.Time
}

func (r *RescheduleRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *RescheduleRequest) Validate() error {
	if err := validation.Required("plannedDate", r.PlannedDate, "La fecha planificada es obligatoria"); err != nil {
		return err
	}
	planned, err := validation.Date("plannedDate", "La fecha planificada", r.PlannedDate)
	if err != nil {
		return err
	}
	r.planned = planned
	return nil
}
