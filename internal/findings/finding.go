// Package findings tracks non-conformities and observations. A finding's
// status follows its corrective actions:
//
//	OPEN -> IN_PROGRESS (first action) -> PENDING_VERIFICATION (last action
//	completed) -> VERIFIED (last action verified) -> CLOSED
//
// New actions pull a PENDING_VERIFICATION finding back to IN_PROGRESS, and
// any non-terminal finding can be CANCELLED.
package findings

import (
	"slices"
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "finding"

type Status string

const (
	StatusOpen                Status = "OPEN"
	StatusInProgress          Status = "IN_PROGRESS"
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusVerified            Status = "VERIFIED"
	StatusClosed              Status = "CLOSED"
	StatusCancelled           Status = "CANCELLED"
)

var Statuses = []string{
	string(StatusOpen), string(StatusInProgress), string(StatusPendingVerification),
	string(StatusVerified), string(StatusClosed), string(StatusCancelled),
}

func (s Status) terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

type Type string

const (
	TypeMajorNonConformity Type = "NON_CONFORMITY_MAJOR"
	TypeMinorNonConformity Type = "NON_CONFORMITY_MINOR"
	TypeObservation        Type = "OBSERVATION"
	TypeImprovement        Type = "IMPROVEMENT_OPPORTUNITY"
)

var Types = []string{
	string(TypeMajorNonConformity), string(TypeMinorNonConformity),
	string(TypeObservation), string(TypeImprovement),
}

type Source string

const (
	SourceInternalAudit     Source = "INTERNAL_AUDIT"
	SourceExternalAudit     Source = "EXTERNAL_AUDIT"
	SourceCustomerComplaint Source = "CUSTOMER_COMPLAINT"
	SourceProcessMonitoring Source = "PROCESS_MONITORING"
	SourceManagementReview  Source = "MANAGEMENT_REVIEW"
	SourceOther             Source = "OTHER"
)

var Sources = []string{
	string(SourceInternalAudit), string(SourceExternalAudit), string(SourceCustomerComplaint),
	string(SourceProcessMonitoring), string(SourceManagementReview), string(SourceOther),
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities is ordered from least to most severe.
var Severities = []string{
	string(SeverityLow), string(SeverityMedium), string(SeverityHigh), string(SeverityCritical),
}

type ActionStatus string

const (
	ActionPending   ActionStatus = "PENDING"
	ActionCompleted ActionStatus = "COMPLETED"
	ActionVerified  ActionStatus = "VERIFIED"
)

// Action is a corrective action owned by a finding.
type Action struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Responsible string       `json:"responsible"`
	PlannedDate time.Time    `json:"plannedDate"`
	Status      ActionStatus `json:"status"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	VerifiedBy  string       `json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time   `json:"verifiedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Overdue reports whether a pending action has passed its planned date.
func (a Action) Overdue(now time.Time) bool {
	return a.Status == ActionPending && a.PlannedDate.Before(now)
}

type Finding struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"companyId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               Type       `json:"type"`
	Source             Source     `json:"source"`
	Severity           Severity   `json:"severity"`
	ProcessID          string     `json:"processId,omitempty"`
	AuditID            string     `json:"auditId,omitempty"`
	DetectedBy         string     `json:"detectedBy"`
	DetectedDate       time.Time  `json:"detectedDate"`
	RootCause          string     `json:"rootCause,omitempty"`
	Status             Status     `json:"status"`
	Actions            []Action   `json:"actions"`
	ClosedAt           *time.Time `json:"closedAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (f *Finding) RecordID() string { return f.ID }

// Fields holds the editable attributes.
type Fields struct {
	CompanyID    string
	Title        string
	Description  string
	Type         Type
	Source       Source
	Severity     Severity
	ProcessID    string
	AuditID      string
	DetectedBy   string
	DetectedDate time.Time
	RootCause    string
}

func (in Fields) validate() error {
	return validation.First(
		validation.MinLength("title", "El título", in.Title, 3),
		validation.MaxLength("title", "El título", in.Title, validation.MaxShortText),
		validation.MinLength("description", "La descripción", in.Description, 10),
		validation.MaxLength("description", "La descripción", in.Description, validation.MaxLongText),
		validation.OneOf("type", "El tipo", string(in.Type), Types...),
		validation.OneOf("source", "El origen", string(in.Source), Sources...),
		validation.OneOf("severity", "La severidad", string(in.Severity), Severities...),
		validation.MinLength("detectedBy", "Quien detecta", in.DetectedBy, 2),
		validation.RequiredTime("detectedDate", in.DetectedDate, "La fecha de detección es obligatoria"),
	)
}

// New validates in and opens a finding with no actions.
func New(in Fields, now time.Time) (*Finding, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	f := &Finding{
		ID:        domain.NewID(),
		Status:    StatusOpen,
		Actions:   []Action{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.apply(in)
	return f, nil
}

func (f *Finding) apply(in Fields) {
	f.CompanyID = strings.TrimSpace(in.CompanyID)
	f.Title = strings.TrimSpace(in.Title)
	f.Description = strings.TrimSpace(in.Description)
	f.Type = in.Type
	f.Source = in.Source
	f.Severity = in.Severity
	f.ProcessID = strings.TrimSpace(in.ProcessID)
	f.AuditID = strings.TrimSpace(in.AuditID)
	f.DetectedBy = strings.TrimSpace(in.DetectedBy)
	f.DetectedDate = in.DetectedDate
	f.RootCause = strings.TrimSpace(in.RootCause)
}

func (f *Finding) Fields() Fields {
	return Fields{
		CompanyID:    f.CompanyID,
		Title:        f.Title,
		Description:  f.Description,
		Type:         f.Type,
		Source:       f.Source,
		Severity:     f.Severity,
		ProcessID:    f.ProcessID,
		AuditID:      f.AuditID,
		DetectedBy:   f.DetectedBy,
		DetectedDate: f.DetectedDate,
		RootCause:    f.RootCause,
	}
}

// Patch is a partial update; nil fields keep their value.
type Patch struct {
	Title        *string
	Description  *string
	Type         *Type
	Source       *Source
	Severity     *Severity
	ProcessID    *string
	DetectedDate *time.Time
	RootCause    *string
}

func (p Patch) Merge(in Fields) Fields {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	if p.Source != nil {
		in.Source = *p.Source
	}
	if p.Severity != nil {
		in.Severity = *p.Severity
	}
	if p.ProcessID != nil {
		in.ProcessID = *p.ProcessID
	}
	if p.DetectedDate != nil {
		in.DetectedDate = *p.DetectedDate
	}
	if p.RootCause != nil {
		in.RootCause = *p.RootCause
	}
	return in
}

// Update edits the descriptive fields of a finding that is still open.
func (f *Finding) Update(in Fields, now time.Time) error {
	if f.Status.terminal() {
		return dErrors.InvalidTransition(EntityType, string(f.Status), string(f.Status))
	}
	if err := in.validate(); err != nil {
		return err
	}
	f.apply(in)
	f.touch(now)
	return nil
}

// NewAction is the input for AddAction.
type NewAction struct {
	Description string
	Responsible string
	PlannedDate time.Time
}

// AddAction appends a pending action and moves the finding to IN_PROGRESS.
func (f *Finding) AddAction(in NewAction, now time.Time) (Action, error) {
	switch f.Status {
	case StatusOpen, StatusInProgress, StatusPendingVerification:
	default:
		return Action{}, f.illegal(StatusInProgress)
	}
	if err := validation.First(
		validation.MinLength("description", "La descripción", in.Description, 5),
		validation.MaxLength("description", "La descripción", in.Description, validation.MaxLongText),
		validation.MinLength("responsible", "El responsable", in.Responsible, 2),
		validation.RequiredTime("plannedDate", in.PlannedDate, "La fecha planificada es obligatoria"),
	); err != nil {
		return Action{}, err
	}

	a := Action{
		ID:          domain.NewID(),
		Description: strings.TrimSpace(in.Description),
		Responsible: strings.TrimSpace(in.Responsible),
		PlannedDate: in.PlannedDate,
		Status:      ActionPending,
		CreatedAt:   now,
	}
	f.Actions = append(f.Actions, a)
	f.Status = StatusInProgress
	f.touch(now)
	return a, nil
}

// CompleteAction marks a pending action done. When no pending action
// remains the finding awaits verification.
func (f *Finding) CompleteAction(actionID string, now time.Time) error {
	if f.Status != StatusInProgress {
		return f.illegal(StatusPendingVerification)
	}
	a, err := f.action(actionID)
	if err != nil {
		return err
	}
	if a.Status != ActionPending {
		return dErrors.InvalidTransition("finding action", string(a.Status), string(ActionCompleted))
	}
	at := now
	a.Status = ActionCompleted
	a.CompletedAt = &at

	if !f.any(ActionPending) {
		f.Status = StatusPendingVerification
	}
	f.touch(now)
	return nil
}

// VerifyAction confirms the effectiveness of a completed action. The
// finding becomes VERIFIED once every action is verified.
func (f *Finding) VerifyAction(actionID, verifiedBy string, now time.Time) error {
	if f.Status != StatusInProgress && f.Status != StatusPendingVerification {
		return f.illegal(StatusVerified)
	}
	a, err := f.action(actionID)
	if err != nil {
		return err
	}
	if a.Status != ActionCompleted {
		return dErrors.InvalidTransition("finding action", string(a.Status), string(ActionVerified))
	}
	at := now
	a.Status = ActionVerified
	a.VerifiedBy = strings.TrimSpace(verifiedBy)
	a.VerifiedAt = &at

	if f.Status == StatusPendingVerification && !f.any(ActionPending) && !f.any(ActionCompleted) {
		f.Status = StatusVerified
	}
	f.touch(now)
	return nil
}

// Close ends a verified finding.
func (f *Finding) Close(now time.Time) error {
	if f.Status != StatusVerified {
		return f.illegal(StatusClosed)
	}
	at := now
	f.Status = StatusClosed
	f.ClosedAt = &at
	f.touch(now)
	return nil
}

// Cancel abandons a finding from any non-terminal state.
func (f *Finding) Cancel(reason string, now time.Time) error {
	if f.Status.terminal() {
		return f.illegal(StatusCancelled)
	}
	f.Status = StatusCancelled
	f.CancellationReason = strings.TrimSpace(reason)
	f.touch(now)
	return nil
}

// HasOverdueActions reports whether any pending action is past due on a
// finding that is still open.
func (f *Finding) HasOverdueActions(now time.Time) bool {
	if f.Status.terminal() {
		return false
	}
	return slices.ContainsFunc(f.Actions, func(a Action) bool { return a.Overdue(now) })
}

func (f *Finding) any(s ActionStatus) bool {
	return slices.ContainsFunc(f.Actions, func(a Action) bool { return a.Status == s })
}

func (f *Finding) action(id string) (*Action, error) {
	for i := range f.Actions {
		if f.Actions[i].ID == id {
			return &f.Actions[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "Acción no encontrada")
}

func (f *Finding) touch(now time.Time) {
	f.UpdatedAt = domain.Touch(f.UpdatedAt, now)
}

func (f *Finding) illegal(to Status) error {
	return dErrors.InvalidTransition(EntityType, string(f.Status), string(to))
}
