// Package processes keeps the process map that documents, findings and
// objectives refer to by processId.
package processes

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	qstrings "qms/pkg/platform/strings"
	"qms/pkg/platform/validation"
)

const EntityType = "process"

type Type string

const (
	TypeStrategic   Type = "STRATEGIC"
	TypeOperational Type = "OPERATIONAL"
	TypeSupport     Type = "SUPPORT"
)

var Types = []string{string(TypeStrategic), string(TypeOperational), string(TypeSupport)}

type Process struct {
	ID          string              `json:"id"`
	CompanyID   string              `json:"companyId"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Type        Type                `json:"type"`
	Owner       string              `json:"owner"`
	Purpose     string              `json:"purpose,omitempty"`
	Description string              `json:"description,omitempty"`
	Inputs      []string            `json:"inputs"`
	Outputs     []string            `json:"outputs"`
	Status      domain.RecordStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (p *Process) RecordID() string { return p.ID }

type Fields struct {
	CompanyID   string
	Code        string
	Name        string
	Type        Type
	Owner       string
	Purpose     string
	Description string
	Inputs      []string
	Outputs     []string
}

func (f Fields) validate() error {
	return validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("code", "El código", f.Code, 3),
		validation.MaxLength("code", "El código", f.Code, 50),
		validation.MinLength("name", "El nombre", f.Name, 2),
		validation.MaxLength("name", "El nombre", f.Name, validation.MaxShortText),
		validation.OneOf("type", "El tipo de proceso", string(f.Type), Types...),
		validation.MinLength("owner", "El responsable", f.Owner, 2),
		validation.MaxLength("description", "La descripción", f.Description, validation.MaxLongText),
	)
}

func New(f Fields, now time.Time) (*Process, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	p := &Process{
		ID:        domain.NewID(),
		Status:    domain.RecordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.apply(f)
	return p, nil
}

func (p *Process) apply(f Fields) {
	p.CompanyID = strings.TrimSpace(f.CompanyID)
	p.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	p.Name = strings.TrimSpace(f.Name)
	p.Type = f.Type
	p.Owner = strings.TrimSpace(f.Owner)
	p.Purpose = strings.TrimSpace(f.Purpose)
	p.Description = strings.TrimSpace(f.Description)
	p.Inputs = qstrings.Compact(f.Inputs)
	p.Outputs = qstrings.Compact(f.Outputs)
}

// compact trims entries and drops blanks, never returning nil.

func (p *Process) Fields() Fields {
	return Fields{
		CompanyID:   p.CompanyID,
		Code:        p.Code,
		Name:        p.Name,
		Type:        p.Type,
		Owner:       p.Owner,
		Purpose:     p.Purpose,
		Description: p.Description,
		Inputs:      p.Inputs,
		Outputs:     p.Outputs,
	}
}

type Patch struct {
	Code        *string
	Name        *string
	Type        *Type
	Owner       *string
	Purpose     *string
	Description *string
	Inputs      []string
	Outputs     []string
}

// Merge overlays p on f. Nil Inputs/Outputs keep the current lists.
func (p Patch) Merge(f Fields) Fields {
	if p.Code != nil {
		f.Code = *p.Code
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Owner != nil {
		f.Owner = *p.Owner
	}
	if p.Purpose != nil {
		f.Purpose = *p.Purpose
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Inputs != nil {
		f.Inputs = p.Inputs
	}
	if p.Outputs != nil {
		f.Outputs = p.Outputs
	}
	return f
}

// Update edits an active process. Archived processes must be restored first.
func (p *Process) Update(f Fields, now time.Time) error {
	if p.Status == domain.RecordArchived {
		return dErrors.InvalidTransition(EntityType, string(p.Status), string(p.Status))
	}
	if err := f.validate(); err != nil {
		return err
	}
	p.apply(f)
	p.touch(now)
	return nil
}

func (p *Process) Archive(now time.Time) error { return p.moveTo(domain.RecordArchived, now) }
func (p *Process) Restore(now time.Time) error { return p.moveTo(domain.RecordActive, now) }

func (p *Process) moveTo(next domain.RecordStatus, now time.Time) error {
	if !p.Status.CanTransitionTo(next) {
		return dErrors.InvalidTransition(EntityType, string(p.Status), string(next))
	}
	p.Status = next
	p.touch(now)
	return nil
}

func (p *Process) touch(now time.Time) {
	p.UpdatedAt = domain.Touch(p.UpdatedAt, now)
}
