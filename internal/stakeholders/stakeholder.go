// Package stakeholders records interested parties and where they sit on the
// influence/interest grid.
package stakeholders

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "stakeholder"

type Type string

const (
	TypeInternal Type = "INTERNAL"
	TypeExternal Type = "EXTERNAL"
)

var Types = []string{string(TypeInternal), string(TypeExternal)}

// Level grades influence and interest.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

var Levels = []string{string(LevelLow), string(LevelMedium), string(LevelHigh)}

// Priority is the quadrant of the influence/interest grid.
type Priority string

const (
	PriorityManageClosely Priority = "MANAGE_CLOSELY"
	PriorityKeepSatisfied Priority = "KEEP_SATISFIED"
	PriorityKeepInformed  Priority = "KEEP_INFORMED"
	PriorityMonitor       Priority = "MONITOR"
)

var Priorities = []string{
	string(PriorityManageClosely), string(PriorityKeepSatisfied),
	string(PriorityKeepInformed), string(PriorityMonitor),
}

type Stakeholder struct {
	ID           string              `json:"id"`
	CompanyID    string              `json:"companyId"`
	Name         string              `json:"name"`
	Type         Type                `json:"type"`
	Category     string              `json:"category,omitempty"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Needs        string              `json:"needs,omitempty"`
	Expectations string              `json:"expectations,omitempty"`
	Influence    Level               `json:"influence"`
	Interest     Level               `json:"interest"`
	Status       domain.RecordStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

func (s *Stakeholder) RecordID() string { return s.ID }

type Fields struct {
	CompanyID    string
	Name         string
	Type         Type
	Category     string
	Email        string
	Phone        string
	Needs        string
	Expectations string
	Influence    Level
	Interest     Level
}

func (f Fields) validate() error {
	if err := validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("name", "El nombre", f.Name, 2),
		validation.MaxLength("name", "El nombre", f.Name, validation.MaxShortText),
		validation.OneOf("type", "El tipo", string(f.Type), Types...),
		validation.OneOf("influence", "La influencia", string(f.Influence), Levels...),
		validation.OneOf("interest", "El interés", string(f.Interest), Levels...),
		validation.MaxLength("needs", "Las necesidades", f.Needs, validation.MaxLongText),
		validation.MaxLength("expectations", "Las expectativas", f.Expectations, validation.MaxLongText),
	); err != nil {
		return err
	}
	if strings.TrimSpace(f.Email) != "" {
		return validation.Email("email", f.Email)
	}
	return nil
}

func New(f Fields, now time.Time) (*Stakeholder, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	s := &Stakeholder{
		ID:        domain.NewID(),
		Status:    domain.RecordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(f)
	return s, nil
}

func (s *Stakeholder) apply(f Fields) {
	s.CompanyID = strings.TrimSpace(f.CompanyID)
	s.Name = strings.TrimSpace(f.Name)
	s.Type = f.Type
	s.Category = strings.TrimSpace(f.Category)
	s.Email = strings.ToLower(strings.TrimSpace(f.Email))
	s.Phone = strings.TrimSpace(f.Phone)
	s.Needs = strings.TrimSpace(f.Needs)
	s.Expectations = strings.TrimSpace(f.Expectations)
	s.Influence = f.Influence
	s.Interest = f.Interest
}

func (s *Stakeholder) Fields() Fields {
	return Fields{
		CompanyID:    s.CompanyID,
		Name:         s.Name,
		Type:         s.Type,
		Category:     s.Category,
		Email:        s.Email,
		Phone:        s.Phone,
		Needs:        s.Needs,
		Expectations: s.Expectations,
		Influence:    s.Influence,
		Interest:     s.Interest,
	}
}

type Patch struct {
	Name         *string
	Type         *Type
	Category     *string
	Email        *string
	Phone        *string
	Needs        *string
	Expectations *string
	Influence    *Level
	Interest     *Level
}

func (p Patch) Merge(f Fields) Fields {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Needs != nil {
		f.Needs = *p.Needs
	}
	if p.Expectations != nil {
		f.Expectations = *p.Expectations
	}
	if p.Influence != nil {
		f.Influence = *p.Influence
	}
	if p.Interest != nil {
		f.Interest = *p.Interest
	}
	return f
}

// Update edits an active stakeholder. Archived ones must be restored first.
func (s *Stakeholder) Update(f Fields, now time.Time) error {
	if s.Status == domain.RecordArchived {
		return dErrors.InvalidTransition(EntityType, string(s.Status), string(s.Status))
	}
	if err := f.validate(); err != nil {
		return err
	}
	s.apply(f)
	s.touch(now)
	return nil
}

func (s *Stakeholder) Archive(now time.Time) error { return s.moveTo(domain.RecordArchived, now) }
func (s *Stakeholder) Restore(now time.Time) error { return s.moveTo(domain.RecordActive, now) }

func (s *Stakeholder) moveTo(next domain.RecordStatus, now time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return dErrors.InvalidTransition(EntityType, string(s.Status), string(next))
	}
	s.Status = next
	s.touch(now)
	return nil
}

// Priority places the stakeholder on the grid. MEDIUM counts as high on
// both axes.
func (s *Stakeholder) Priority() Priority {
	influential := s.Influence != LevelLow
	interested := s.Interest != LevelLow
	switch {
	case influential && interested:
		return PriorityManageClosely
	case influential:
		return PriorityKeepSatisfied
	case interested:
		return PriorityKeepInformed
	default:
		return PriorityMonitor
	}
}

func (s *Stakeholder) touch(now time.Time) {
	s.UpdatedAt = domain.Touch(s.UpdatedAt, now)
}
