// Package actionplans manages corrective and preventive action plans.
//
// A plan's stored status rolls up from its actions. OVERDUE is never
// stored: EffectiveStatus derives it at read time from outstanding actions
// whose planned date has passed, and it never masks COMPLETED or CANCELLED.
package actionplans

import (
	"math"
	"slices"
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "action_plan"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	// StatusOverdue is derived only.
	StatusOverdue Status = "OVERDUE"
)

// Statuses lists the values a status filter accepts, OVERDUE included.
var Statuses = []string{
	string(StatusPending), string(StatusInProgress), string(StatusCompleted),
	string(StatusCancelled), string(StatusOverdue),
}

func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type OriginType string

const (
	OriginFinding          OriginType = "FINDING"
	OriginObjective        OriginType = "OBJECTIVE"
	OriginRisk             OriginType = "RISK"
	OriginManagementReview OriginType = "MANAGEMENT_REVIEW"
	OriginAudit            OriginType = "AUDIT"
	OriginOther            OriginType = "OTHER"
)

var OriginTypes = []string{
	string(OriginFinding), string(OriginObjective), string(OriginRisk),
	string(OriginManagementReview), string(OriginAudit), string(OriginOther),
}

type ActionStatus string

const (
	ActionPending    ActionStatus = "PENDING"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionCompleted  ActionStatus = "COMPLETED"
	ActionCancelled  ActionStatus = "CANCELLED"
)

var ActionStatuses = []string{
	string(ActionPending), string(ActionInProgress), string(ActionCompleted), string(ActionCancelled),
}

func (s ActionStatus) terminal() bool {
	return s == ActionCompleted || s == ActionCancelled
}

func (s ActionStatus) outstanding() bool {
	return s == ActionPending || s == ActionInProgress
}

type Action struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Responsible string       `json:"responsible"`
	PlannedDate time.Time    `json:"plannedDate"`
	Status      ActionStatus `json:"status"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Evidence    string       `json:"evidence,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Overdue reports whether an outstanding action has passed its planned date.
func (a Action) Overdue(now time.Time) bool {
	return a.Status.outstanding() && a.PlannedDate.Before(now)
}

type ActionPlan struct {
	ID                   string     `json:"id"`
	CompanyID            string     `json:"companyId"`
	OriginType           OriginType `json:"originType"`
	OriginID             string     `json:"originId,omitempty"`
	OriginDescription    string     `json:"originDescription"`
	CreatedDate          time.Time  `json:"createdDate"`
	CreatedBy            string     `json:"createdBy"`
	Observations         string     `json:"observations,omitempty"`
	Status               Status     `json:"status"`
	Actions              []Action   `json:"actions"`
	CompletionPercentage float64    `json:"completionPercentage"`
	CancellationReason   string     `json:"cancellationReason,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (p *ActionPlan) RecordID() string { return p.ID }

type Fields struct {
	CompanyID         string
	OriginType        OriginType
	OriginID          string
	OriginDescription string
	CreatedDate       time.Time
	CreatedBy         string
	Observations      string
}

func (in Fields) validate() error {
	return validation.First(
		validation.Required("companyId", in.CompanyID, "La empresa es obligatoria"),
		validation.OneOf("originType", "El tipo de origen", string(in.OriginType), OriginTypes...),
		validation.MinLength("originDescription", "La descripción del origen", in.OriginDescription, 5),
		validation.MaxLength("originDescription", "La descripción del origen", in.OriginDescription, validation.MaxLongText),
		validation.RequiredTime("createdDate", in.CreatedDate, "La fecha de creación es obligatoria"),
		validation.MinLength("createdBy", "El creador", in.CreatedBy, 2),
		validation.MaxLength("observations", "Las observaciones", in.Observations, validation.MaxLongText),
	)
}

// New validates in and returns a PENDING plan with no actions.
func New(in Fields, now time.Time) (*ActionPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &ActionPlan{
		ID:        domain.NewID(),
		Status:    StatusPending,
		Actions:   []Action{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.apply(in)
	return p, nil
}

func (p *ActionPlan) apply(in Fields) {
	p.CompanyID = strings.TrimSpace(in.CompanyID)
	p.OriginType = in.OriginType
	p.OriginID = strings.TrimSpace(in.OriginID)
	p.OriginDescription = strings.TrimSpace(in.OriginDescription)
	p.CreatedDate = in.CreatedDate
	p.CreatedBy = strings.TrimSpace(in.CreatedBy)
	p.Observations = strings.TrimSpace(in.Observations)
}

func (p *ActionPlan) Fields() Fields {
	return Fields{
		CompanyID:         p.CompanyID,
		OriginType:        p.OriginType,
		OriginID:          p.OriginID,
		OriginDescription: p.OriginDescription,
		CreatedDate:       p.CreatedDate,
		CreatedBy:         p.CreatedBy,
		Observations:      p.Observations,
	}
}

// Patch is a partial update of the plan header.
type Patch struct {
	OriginType        *OriginType
	OriginID          *string
	OriginDescription *string
	Observations      *string
}

func (pt Patch) Merge(in Fields) Fields {
	if pt.OriginType != nil {
		in.OriginType = *pt.OriginType
	}
	if pt.OriginID != nil {
		in.OriginID = *pt.OriginID
	}
	if pt.OriginDescription != nil {
		in.OriginDescription = *pt.OriginDescription
	}
	if pt.Observations != nil {
		in.Observations = *pt.Observations
	}
	return in
}

// Update edits the plan header. Cancelled plans are frozen.
func (p *ActionPlan) Update(in Fields, now time.Time) error {
	if p.Status == StatusCancelled {
		return dErrors.InvalidTransition(EntityType, string(p.Status), string(p.Status))
	}
	if err := in.validate(); err != nil {
		return err
	}
	p.apply(in)
	p.touch(now)
	return nil
}

type NewAction struct {
	Description string
	Responsible string
	PlannedDate time.Time
}

func (in NewAction) validate() error {
	return validation.First(
		validation.MinLength("description", "La descripción", in.Description, 5),
		validation.MaxLength("description", "La descripción", in.Description, validation.MaxLongText),
		validation.MinLength("responsible", "El responsable", in.Responsible, 2),
		validation.RequiredTime("plannedDate", in.PlannedDate, "La fecha planificada es obligatoria"),
	)
}

// AddAction appends a pending action. Completed and cancelled plans take
// no new actions.
func (p *ActionPlan) AddAction(in NewAction, now time.Time) (Action, error) {
	if p.Status.terminal() {
		return Action{}, dErrors.InvalidTransition(EntityType, string(p.Status), string(StatusInProgress))
	}
	if err := in.validate(); err != nil {
		return Action{}, err
	}
	a := Action{
		ID:          domain.NewID(),
		Description: strings.TrimSpace(in.Description),
		Responsible: strings.TrimSpace(in.Responsible),
		PlannedDate: in.PlannedDate,
		Status:      ActionPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Actions = append(p.Actions, a)
	p.rollUp()
	p.touch(now)
	return a, nil
}

// ActionPatch changes an action. Nil fields keep their value.
type ActionPatch struct {
	Status      *ActionStatus
	Description *string
	Responsible *string
	PlannedDate *time.Time
	Evidence    *string
}

// UpdateAction edits one action and rolls its status up into the plan.
// Terminal actions cannot change.
func (p *ActionPlan) UpdateAction(actionID string, patch ActionPatch, now time.Time) error {
	if p.Status == StatusCancelled {
		return dErrors.InvalidTransition(EntityType, string(p.Status), string(p.Status))
	}
	idx := slices.IndexFunc(p.Actions, func(a Action) bool { return a.ID == actionID })
	if idx < 0 {
		return dErrors.New(dErrors.CodeNotFound, "Acción no encontrada")
	}
	a := p.Actions[idx]
	if a.Status.terminal() {
		attempted := a.Status
		if patch.Status != nil {
			attempted = *patch.Status
		}
		return dErrors.InvalidTransition("action", string(a.Status), string(attempted))
	}

	if patch.Description != nil {
		a.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Responsible != nil {
		a.Responsible = strings.TrimSpace(*patch.Responsible)
	}
	if patch.PlannedDate != nil {
		a.PlannedDate = *patch.PlannedDate
	}
	if patch.Evidence != nil {
		a.Evidence = strings.TrimSpace(*patch.Evidence)
	}
	if err := (NewAction{Description: a.Description, Responsible: a.Responsible, PlannedDate: a.PlannedDate}).validate(); err != nil {
		return err
	}
	if patch.Status != nil {
		if err := a.moveTo(*patch.Status, now); err != nil {
			return err
		}
	}
	a.UpdatedAt = domain.Touch(a.UpdatedAt, now)

	p.Actions[idx] = a
	p.rollUp()
	p.touch(now)
	return nil
}

func (a *Action) moveTo(next ActionStatus, now time.Time) error {
	if !slices.Contains(ActionStatuses, string(next)) {
		return dErrors.Validation("status", "El estado de la acción debe ser uno de: "+strings.Join(ActionStatuses, ", "))
	}
	switch {
	case next == a.Status:
		return nil
	case a.Status == ActionInProgress && next == ActionPending:
		return dErrors.InvalidTransition("action", string(a.Status), string(next))
	}
	at := now
	switch next {
	case ActionInProgress:
		a.StartedAt = &at
	case ActionCompleted:
		if a.StartedAt == nil {
			a.StartedAt = &at
		}
		a.CompletedAt = &at
	}
	a.Status = next
	return nil
}

// Cancel abandons a plan that is not yet completed.
func (p *ActionPlan) Cancel(reason string, now time.Time) error {
	if p.Status.terminal() {
		return dErrors.InvalidTransition(EntityType, string(p.Status), string(StatusCancelled))
	}
	p.Status = StatusCancelled
	p.CancellationReason = strings.TrimSpace(reason)
	p.touch(now)
	return nil
}

// rollUp recomputes completionPercentage and the stored status from the
// actions. Cancelled actions do not count toward either.
func (p *ActionPlan) rollUp() {
	var active, completed, started int
	for _, a := range p.Actions {
		switch a.Status {
		case ActionCancelled:
			continue
		case ActionCompleted:
			completed++
		case ActionInProgress:
			started++
		}
		active++
	}

	p.CompletionPercentage = 0
	if active > 0 {
		p.CompletionPercentage = math.Round(float64(completed)/float64(active)*10000) / 100
	}

	switch {
	case active > 0 && completed == active:
		p.Status = StatusCompleted
	case completed > 0 || started > 0:
		p.Status = StatusInProgress
	default:
		p.Status = StatusPending
	}
}

// HasOverdueActions reports whether an outstanding action is past due on a
// plan that is still open.
func (p *ActionPlan) HasOverdueActions(now time.Time) bool {
	if p.Status.terminal() {
		return false
	}
	return slices.ContainsFunc(p.Actions, func(a Action) bool { return a.Overdue(now) })
}

// EffectiveStatus is the status shown to users: OVERDUE replaces PENDING
// or IN_PROGRESS while an outstanding action is late.
func (p *ActionPlan) EffectiveStatus(now time.Time) Status {
	if p.HasOverdueActions(now) {
		return StatusOverdue
	}
	return p.Status
}

func (p *ActionPlan) touch(now time.Time) {
	p.UpdatedAt = domain.Touch(p.UpdatedAt, now)
}
