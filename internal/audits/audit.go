// Package audits plans and tracks internal, external and supplier audits.
package audits

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	qstrings "qms/pkg/platform/strings"
	"qms/pkg/platform/validation"
)

const EntityType = "audit"

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var Statuses = []string{
	string(StatusPlanned), string(StatusInProgress), string(StatusCompleted), string(StatusCancelled),
}

func (s Status) terminal() bool { return s == StatusCompleted || s == StatusCancelled }

type Type string

const (
	TypeInternal      Type = "INTERNAL"
	TypeExternal      Type = "EXTERNAL"
	TypeSupplier      Type = "SUPPLIER"
	TypeCertification Type = "CERTIFICATION"
)

var Types = []string{
	string(TypeInternal), string(TypeExternal), string(TypeSupplier), string(TypeCertification),
}

// Reschedule records a move of the planned date.
type Reschedule struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

type Audit struct {
	ID           string       `json:"id"`
	CompanyID    string       `json:"companyId"`
	Title        string       `json:"title"`
	Type         Type         `json:"type"`
	Scope        string       `json:"scope,omitempty"`
	Standard     string       `json:"standard,omitempty"`
	ProcessID    string       `json:"processId,omitempty"`
	LeadAuditor  string       `json:"leadAuditor"`
	Team         []string     `json:"team"`
	Auditee      string       `json:"auditee,omitempty"`
	PlannedDate  time.Time    `json:"plannedDate"`
	Status       Status       `json:"status"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	Conclusions  string       `json:"conclusions,omitempty"`
	FindingIDs   []string     `json:"findingIds"`
	CancelReason string       `json:"cancellationReason,omitempty"`
	Reschedules  []Reschedule `json:"reschedules"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (a *Audit) RecordID() string { return a.ID }

type Fields struct {
	CompanyID   string
	Title       string
	Type        Type
	Scope       string
	Standard    string
	ProcessID   string
	LeadAuditor string
	Team        []string
	Auditee     string
	PlannedDate time.Time
}

func (f Fields) validate() error {
	return validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("title", "El título", f.Title, 3),
		validation.MaxLength("title", "El título", f.Title, validation.MaxShortText),
		validation.OneOf("type", "El tipo de auditoría", string(f.Type), Types...),
		validation.MinLength("leadAuditor", "El auditor líder", f.LeadAuditor, 2),
		validation.MaxLength("scope", "El alcance", f.Scope, validation.MaxLongText),
		validation.RequiredTime("plannedDate", f.PlannedDate, "La fecha planificada es obligatoria"),
	)
}

func New(f Fields, now time.Time) (*Audit, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	a := &Audit{
		ID:          domain.NewID(),
		Status:      StatusPlanned,
		FindingIDs:  []string{},
		Reschedules: []Reschedule{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.apply(f)
	return a, nil
}

func (a *Audit) apply(f Fields) {
	a.CompanyID = strings.TrimSpace(f.CompanyID)
	a.Title = strings.TrimSpace(f.Title)
	a.Type = f.Type
	a.Scope = strings.TrimSpace(f.Scope)
	a.Standard = strings.TrimSpace(f.Standard)
	a.ProcessID = strings.TrimSpace(f.ProcessID)
	a.LeadAuditor = strings.TrimSpace(f.LeadAuditor)
	a.Team = qstrings.CompactFold(f.Team)
	a.Auditee = strings.TrimSpace(f.Auditee)
	a.PlannedDate = f.PlannedDate
}

func (a *Audit) Fields() Fields {
	return Fields{
		CompanyID:   a.CompanyID,
		Title:       a.Title,
		Type:        a.Type,
		Scope:       a.Scope,
		Standard:    a.Standard,
		ProcessID:   a.ProcessID,
		LeadAuditor: a.LeadAuditor,
		Team:        a.Team,
		Auditee:     a.Auditee,
		PlannedDate: a.PlannedDate,
	}
}

// Patch leaves the planned date alone; moving it goes through Reschedule.
type Patch struct {
	Title       *string
	Type        *Type
	Scope       *string
	Standard    *string
	ProcessID   *string
	LeadAuditor *string
	Team        []string
	Auditee     *string
}

func (p Patch) Merge(f Fields) Fields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Scope != nil {
		f.Scope = *p.Scope
	}
	if p.Standard != nil {
		f.Standard = *p.Standard
	}
	if p.ProcessID != nil {
		f.ProcessID = *p.ProcessID
	}
	if p.LeadAuditor != nil {
		f.LeadAuditor = *p.LeadAuditor
	}
	if p.Team != nil {
		f.Team = p.Team
	}
	if p.Auditee != nil {
		f.Auditee = *p.Auditee
	}
	return f
}

func (a *Audit) Update(f Fields, now time.Time) error {
	if a.Status.terminal() {
		return a.illegal(a.Status)
	}
	if err := f.validate(); err != nil {
		return err
	}
	a.apply(f)
	a.touch(now)
	return nil
}

func (a *Audit) Start(now time.Time) error {
	if a.Status != StatusPlanned {
		return a.illegal(StatusInProgress)
	}
	at := now
	a.Status = StatusInProgress
	a.StartedAt = &at
	a.touch(now)
	return nil
}

// Completion closes the fieldwork.
type Completion struct {
	Conclusions string
	FindingIDs  []string
}

func (a *Audit) Complete(c Completion, now time.Time) error {
	if a.Status != StatusInProgress {
		return a.illegal(StatusCompleted)
	}
	if err := validation.First(
		validation.MinLength("conclusions", "Las conclusiones", c.Conclusions, 10),
		validation.MaxLength("conclusions", "Las conclusiones", c.Conclusions, validation.MaxLongText),
	); err != nil {
		return err
	}
	at := now
	a.Status = StatusCompleted
	a.CompletedAt = &at
	a.Conclusions = strings.TrimSpace(c.Conclusions)
	a.FindingIDs = qstrings.Compact(c.FindingIDs)
	a.touch(now)
	return nil
}

func (a *Audit) Cancel(reason string, now time.Time) error {
	if a.Status.terminal() {
		return a.illegal(StatusCancelled)
	}
	a.Status = StatusCancelled
	a.CancelReason = strings.TrimSpace(reason)
	a.touch(now)
	return nil
}

// Reschedule moves the planned date of an audit that has not started. The
// new date cannot fall before the current day.
func (a *Audit) Reschedule(to time.Time, reason string, now time.Time) error {
	if a.Status != StatusPlanned {
		return a.illegal(StatusPlanned)
	}
	if err := validation.RequiredTime("plannedDate", to, "La fecha planificada es obligatoria"); err != nil {
		return err
	}
	if to.Before(now.Truncate(24 * time.Hour)) {
		return dErrors.Validation("plannedDate", "La nueva fecha no puede estar en el pasado")
	}
	a.Reschedules = append(a.Reschedules, Reschedule{
		From:   a.PlannedDate,
		To:     to,
		Reason: strings.TrimSpace(reason),
		At:     now,
	})
	a.PlannedDate = to
	a.touch(now)
	return nil
}

// IsOverdue reports a planned audit whose date passed without starting.
func (a *Audit) IsOverdue(now time.Time) bool {
	return a.Status == StatusPlanned && a.PlannedDate.Before(now)
}

func (a *Audit) touch(now time.Time) {
	a.UpdatedAt = domain.Touch(a.UpdatedAt, now)
}

func (a *Audit) illegal(to Status) error {
	return dErrors.InvalidTransition(EntityType, string(a.Status), string(to))
}

