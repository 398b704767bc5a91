// Package objectives tracks quality objectives: a measurable target, its
// progress over time and a closing verdict.
package objectives

import (
	"math"
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "objective"

type Status string

const (
	StatusPlanned     Status = "PLANNED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusAchieved    Status = "ACHIEVED"
	StatusNotAchieved Status = "NOT_ACHIEVED"
	StatusCancelled   Status = "CANCELLED"
)

var Statuses = []string{
	string(StatusPlanned), string(StatusInProgress), string(StatusAchieved),
	string(StatusNotAchieved), string(StatusCancelled),
}

func (s Status) terminal() bool {
	return s == StatusAchieved || s == StatusNotAchieved || s == StatusCancelled
}

// Comment is an append-only note on an objective.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Measurement is one recorded value of the indicator.
type Measurement struct {
	Value      float64   `json:"value"`
	Note       string    `json:"note,omitempty"`
	RecordedBy string    `json:"recordedBy,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

type Objective struct {
	ID           string        `json:"id"`
	CompanyID    string        `json:"companyId"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Indicator    string        `json:"indicator"`
	Unit         string        `json:"unit,omitempty"`
	TargetValue  float64       `json:"targetValue"`
	CurrentValue float64       `json:"currentValue"`
	Responsible  string        `json:"responsible"`
	ProcessID    string        `json:"processId,omitempty"`
	StartDate    time.Time     `json:"startDate"`
	DueDate      time.Time     `json:"dueDate"`
	Status       Status        `json:"status"`
	Measurements []Measurement `json:"measurements"`
	Comments     []Comment     `json:"comments"`
	ClosedAt     *time.Time    `json:"closedAt,omitempty"`
	CancelReason string        `json:"cancellationReason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (o *Objective) RecordID() string { return o.ID }

type Fields struct {
	CompanyID   string
	Title       string
	Description string
	Indicator   string
	Unit        string
	TargetValue float64
	Responsible string
	ProcessID   string
	StartDate   time.Time
	DueDate     time.Time
}

func (f Fields) validate() error {
	if err := validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("title", "El título", f.Title, 3),
		validation.MaxLength("title", "El título", f.Title, validation.MaxShortText),
		validation.MinLength("indicator", "El indicador", f.Indicator, 2),
		validation.MinLength("responsible", "El responsable", f.Responsible, 2),
		validation.MaxLength("description", "La descripción", f.Description, validation.MaxLongText),
		validation.RequiredTime("startDate", f.StartDate, "La fecha de inicio es obligatoria"),
		validation.RequiredTime("dueDate", f.DueDate, "La fecha límite es obligatoria"),
	); err != nil {
		return err
	}
	if f.TargetValue <= 0 {
		return dErrors.Validation("targetValue", "El valor meta debe ser mayor que 0")
	}
	if f.DueDate.Before(f.StartDate) {
		return dErrors.Validation("dueDate", "La fecha límite no puede ser anterior a la fecha de inicio")
	}
	return nil
}

// New validates f and returns a PLANNED objective with no progress.
func New(f Fields, now time.Time) (*Objective, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	o := &Objective{
		ID:           domain.NewID(),
		Status:       StatusPlanned,
		Measurements: []Measurement{},
		Comments:     []Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	o.apply(f)
	return o, nil
}

func (o *Objective) apply(f Fields) {
	o.CompanyID = strings.TrimSpace(f.CompanyID)
	o.Title = strings.TrimSpace(f.Title)
	o.Description = strings.TrimSpace(f.Description)
	o.Indicator = strings.TrimSpace(f.Indicator)
	o.Unit = strings.TrimSpace(f.Unit)
	o.TargetValue = f.TargetValue
	o.Responsible = strings.TrimSpace(f.Responsible)
	o.ProcessID = strings.TrimSpace(f.ProcessID)
	o.StartDate = f.StartDate
	o.DueDate = f.DueDate
}

func (o *Objective) Fields() Fields {
	return Fields{
		CompanyID:   o.CompanyID,
		Title:       o.Title,
		Description: o.Description,
		Indicator:   o.Indicator,
		Unit:        o.Unit,
		TargetValue: o.TargetValue,
		Responsible: o.Responsible,
		ProcessID:   o.ProcessID,
		StartDate:   o.StartDate,
		DueDate:     o.DueDate,
	}
}

type Patch struct {
	Title       *string
	Description *string
	Indicator   *string
	Unit        *string
	TargetValue *float64
	Responsible *string
	ProcessID   *string
	StartDate   *time.Time
	DueDate     *time.Time
}

func (p Patch) Merge(f Fields) Fields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Indicator != nil {
		f.Indicator = *p.Indicator
	}
	if p.Unit != nil {
		f.Unit = *p.Unit
	}
	if p.TargetValue != nil {
		f.TargetValue = *p.TargetValue
	}
	if p.Responsible != nil {
		f.Responsible = *p.Responsible
	}
	if p.ProcessID != nil {
		f.ProcessID = *p.ProcessID
	}
	if p.StartDate != nil {
		f.StartDate = *p.StartDate
	}
	if p.DueDate != nil {
		f.DueDate = *p.DueDate
	}
	return f
}

// Update replaces the editable attributes of an open objective.
func (o *Objective) Update(f Fields, now time.Time) error {
	if o.Status.terminal() {
		return o.illegal(o.Status)
	}
	if err := f.validate(); err != nil {
		return err
	}
	o.apply(f)
	o.touch(now)
	return nil
}

// Start moves a planned objective into progress without a measurement.
func (o *Objective) Start(now time.Time) error {
	if o.Status != StatusPlanned {
		return o.illegal(StatusInProgress)
	}
	o.Status = StatusInProgress
	o.touch(now)
	return nil
}

// Progress is one indicator reading.
type Progress struct {
	Value      float64
	Note       string
	RecordedBy string
}

// RecordProgress sets the current value and appends it to the history. The
// first reading starts a planned objective.
func (o *Objective) RecordProgress(p Progress, now time.Time) error {
	if o.Status.terminal() {
		return o.illegal(StatusInProgress)
	}
	if p.Value < 0 || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return dErrors.Validation("currentValue", "El valor actual debe ser un número mayor o igual a 0")
	}
	if err := validation.MaxLength("note", "La nota", p.Note, validation.MaxLongText); err != nil {
		return err
	}
	o.CurrentValue = p.Value
	o.Measurements = append(o.Measurements, Measurement{
		Value:      p.Value,
		Note:       strings.TrimSpace(p.Note),
		RecordedBy: strings.TrimSpace(p.RecordedBy),
		RecordedAt: now,
	})
	o.Status = StatusInProgress
	o.touch(now)
	return nil
}

// AddComment appends a note. Comments are accepted in every state.
func (o *Objective) AddComment(author, text string, now time.Time) (Comment, error) {
	if err := validation.First(
		validation.MinLength("author", "El autor", author, 2),
		validation.MinLength("text", "El comentario", text, 2),
		validation.MaxLength("text", "El comentario", text, validation.MaxLongText),
	); err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:        domain.NewID(),
		Author:    strings.TrimSpace(author),
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
	}
	o.Comments = append(o.Comments, c)
	o.touch(now)
	return c, nil
}

// Close decides the verdict from the latest reading against the target.
func (o *Objective) Close(now time.Time) error {
	if o.Status != StatusInProgress {
		return o.illegal(StatusAchieved)
	}
	o.Status = StatusNotAchieved
	if o.CurrentValue >= o.TargetValue {
		o.Status = StatusAchieved
	}
	at := now
	o.ClosedAt = &at
	o.touch(now)
	return nil
}

func (o *Objective) Cancel(reason string, now time.Time) error {
	if o.Status.terminal() {
		return o.illegal(StatusCancelled)
	}
	o.Status = StatusCancelled
	o.CancelReason = strings.TrimSpace(reason)
	o.touch(now)
	return nil
}

// Progress is current/target as a percentage, capped at 100 and rounded to
// two decimals.
func (o *Objective) Progress() float64 {
	if o.TargetValue <= 0 {
		return 0
	}
	pct := math.Min(o.CurrentValue/o.TargetValue*100, 100)
	return math.Round(pct*100) / 100
}

// IsOverdue reports an open objective past its due date.
func (o *Objective) IsOverdue(now time.Time) bool {
	return !o.Status.terminal() && o.DueDate.Before(now)
}

func (o *Objective) touch(now time.Time) {
	o.UpdatedAt = domain.Touch(o.UpdatedAt, now)
}

func (o *Objective) illegal(to Status) error {
	return dErrors.InvalidTransition(EntityType, string(o.Status), string(to))
}
