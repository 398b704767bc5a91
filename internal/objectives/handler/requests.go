package handler

import (
	"strings"
	"time"

	"qms/internal/objectives"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

type CreateRequest struct {
	CompanyID   string  `json:"companyId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Indicator   string  `json:"indicator"`
	Unit        string  `json:"unit"`
	TargetValue float64 `json:"targetValue"`
	Responsible string  `json:"responsible"`
	ProcessID   string  `json:"processId"`
	StartDate   string  `json:"startDate"`
	DueDate     string  `json:"dueDate"`

	start, due time.Time
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
	if err := validation.Required("companyId", r.CompanyID, "La empresa es obligatoria"); err != nil {
		return err
	}
	var err error
	if r.start, err = validation.Date("startDate", "La fecha de inicio", r.StartDate); err != nil {
		return err
	}
	if r.due, err = validation.Date("dueDate", "La fecha límite", r.DueDate); err != nil {
		return err
	}
	return nil
}

func (r *CreateRequest) Fields() objectives.Fields {
	return objectives.Fields{
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Description: r.Description,
		Indicator:   r.Indicator,
		Unit:        r.Unit,
		TargetValue: r.TargetValue,
		Responsible: r.Responsible,
		ProcessID:   r.ProcessID,
		StartDate:   r.start,
		DueDate:     r.due,
	}
}

type UpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Indicator   *string  `json:"indicator"`
	Unit        *string  `json:"unit"`
	TargetValue *float64 `json:"targetValue"`
	Responsible *string  `json:"responsible"`
	ProcessID   *string  `json:"processId"`
	StartDate   *string  `json:"startDate"`
	DueDate     *string  `json:"dueDate"`

	start, due *time.Time
}

func (r *UpdateRequest) Normalize() {}

func (r *UpdateRequest) Validate() error {
	if r.StartDate != nil {
		t, err := validation.Date("startDate", "La fecha de inicio", *r.StartDate)
		if err != nil {
			return err
		}
		r.start = &t
	}
	if r.DueDate != nil {
		t, err := validation.Date("dueDate", "La fecha límite", *r.DueDate)
		if err != nil {
			return err
		}
		r.due = &t
	}
	return nil
}

func (r *UpdateRequest) Patch() objectives.Patch {
	return objectives.Patch{
		Title:       r.Title,
		Description: r.Description,
		Indicator:   r.Indicator,
		Unit:        r.Unit,
		TargetValue: r.TargetValue,
		Responsible: r.Responsible,
		ProcessID:   r.ProcessID,
		StartDate:   r.start,
		DueDate:     r.due,
	}
}

// ProgressRequest is the body of POST /objectives/{id}/progress.
type ProgressRequest struct {
	CurrentValue *float64 `json:"currentValue"`
	Note         string   `json:"note"`
	RecordedBy   string   `json:"recordedBy"`
}

func (r *ProgressRequest) Normalize() {
	r.Note = strings.TrimSpace(r.Note)
	r.RecordedBy = strings.TrimSpace(r.RecordedBy)
}

func (r *ProgressRequest) Validate() error {
	if r.CurrentValue == nil {
		return dErrors.Validation("currentValue", "El valor actual es obligatorio")
	}
	return nil
}

func (r *ProgressRequest) Progress() objectives.Progress {
	return objectives.Progress{Value: *r.CurrentValue, Note: r.Note, RecordedBy: r.RecordedBy}
}

// CommentRequest is the body of POST /objectives/{id}/comments.
type CommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (r *CommentRequest) Normalize() {
	r.Author = strings.TrimSpace(r.Author)
	r.Text = strings.TrimSpace(r.Text)
}

func (r *CommentRequest) Validate() error {
	return validation.Required("text", r.Text, "El comentario es obligatorio")
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Normalize() { r.Reason = strings.TrimSpace(r.Reason) }

func (r *CancelRequest) Validate() error {
	return validation.MaxLength("reason", "El motivo", r.Reason, validation.MaxLongText)
}
