// Package documents manages controlled documents and their approval
// workflow: BORRADOR -> EN_REVISION -> APROBADO, with rejection back to
// BORRADOR and archival to VENCIDO.
package documents

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

// EntityType names documents in events and metrics.
const EntityType = "document"

// ExpiringSoonDays is the window used by the expiringSoon view field.
const ExpiringSoonDays = 30

type Status string

const (
	StatusDraft    Status = "BORRADOR"
	StatusInReview Status = "EN_REVISION"
	StatusApproved Status = "APROBADO"
	StatusExpired  Status = "VENCIDO"
)

// Statuses is the declared order used for filtering and rank sorting.
var Statuses = []string{
	string(StatusDraft), string(StatusInReview), string(StatusApproved), string(StatusExpired),
}

type Type string

const (
	TypeManual      Type = "MANUAL"
	TypeProcedure   Type = "PROCEDIMIENTO"
	TypeInstruction Type = "INSTRUCTIVO"
	TypeForm        Type = "FORMATO"
	TypeRecord      Type = "REGISTRO"
	TypePolicy      Type = "POLITICA"
)

var Types = []string{
	string(TypeManual), string(TypeProcedure), string(TypeInstruction),
	string(TypeForm), string(TypeRecord), string(TypePolicy),
}

const initialVersion = "1.0"

// Document is a controlled document. Version changes only through
// IncrementVersion; status changes only through the workflow methods.
type Document struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	Type            Type       `json:"type"`
	Description     string     `json:"description,omitempty"`
	Author          string     `json:"author"`
	ProcessID       string     `json:"processId,omitempty"`
	Status          Status     `json:"status"`
	Version         string     `json:"version"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (d *Document) RecordID() string { return d.ID }

// Fields holds the editable attributes shared by create and update.
type Fields struct {
	CompanyID   string
	Code        string
	Title       string
	Type        Type
	Description string
	Author      string
	ProcessID   string
	ExpiryDate  *time.Time
}

func (f Fields) validate() error {
	return validation.First(
		validation.MinLength("code", "El código", f.Code, 3),
		validation.MaxLength("code", "El código", f.Code, validation.MaxShortText),
		validation.MinLength("title", "El título", f.Title, 3),
		validation.MaxLength("title", "El título", f.Title, validation.MaxShortText),
		validation.OneOf("type", "El tipo de documento", string(f.Type), Types...),
		validation.MinLength("author", "El autor", f.Author, 2),
		validation.MaxLength("description", "La descripción", f.Description, validation.MaxLongText),
	)
}

// New validates f and returns a BORRADOR document at version 1.0.
func New(f Fields, now time.Time) (*Document, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	d := &Document{
		ID:        domain.NewID(),
		Status:    StatusDraft,
		Version:   initialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.apply(f)
	return d, nil
}

func (d *Document) apply(f Fields) {
	d.CompanyID = strings.TrimSpace(f.CompanyID)
	d.Code = strings.TrimSpace(f.Code)
	d.Title = strings.TrimSpace(f.Title)
	d.Type = f.Type
	d.Description = strings.TrimSpace(f.Description)
	d.Author = strings.TrimSpace(f.Author)
	d.ProcessID = strings.TrimSpace(f.ProcessID)
	d.ExpiryDate = f.ExpiryDate
}

// Fields returns the current editable attributes, used as the base of a
// partial update.
func (d *Document) Fields() Fields {
	return Fields{
		CompanyID:   d.CompanyID,
		Code:        d.Code,
		Title:       d.Title,
		Type:        d.Type,
		Description: d.Description,
		Author:      d.Author,
		ProcessID:   d.ProcessID,
		ExpiryDate:  d.ExpiryDate,
	}
}

// Patch is a partial update; nil fields keep their current value.
type Patch struct {
	Code        *string
	Title       *string
	Type        *Type
	Description *string
	Author      *string
	ProcessID   *string
	ExpiryDate  *time.Time
}

// Merge overlays p on f.
func (p Patch) Merge(f Fields) Fields {
	if p.Code != nil {
		f.Code = *p.Code
	}
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Author != nil {
		f.Author = *p.Author
	}
	if p.ProcessID != nil {
		f.ProcessID = *p.ProcessID
	}
	if p.ExpiryDate != nil {
		f.ExpiryDate = p.ExpiryDate
	}
	return f
}

// Update replaces the editable attributes. Archived documents are frozen.
func (d *Document) Update(f Fields, now time.Time) error {
	if d.Status == StatusExpired {
		return frozen(d.Status)
	}
	if err := f.validate(); err != nil {
		return err
	}
	d.apply(f)
	d.touch(now)
	return nil
}

// SendToReview moves a draft into review.
func (d *Document) SendToReview(now time.Time) error {
	if d.Status != StatusDraft {
		return d.illegal(StatusInReview)
	}
	d.Status = StatusInReview
	d.RejectionReason = ""
	d.touch(now)
	return nil
}

// Approve accepts a document under review. approvedBy may be empty when
// the approver is unknown.
func (d *Document) Approve(approvedBy string, now time.Time) error {
	if d.Status != StatusInReview {
		return d.illegal(StatusApproved)
	}
	at := now
	d.Status = StatusApproved
	d.ApprovedBy = strings.TrimSpace(approvedBy)
	d.ApprovedAt = &at
	d.touch(now)
	return nil
}

// Reject returns a document under review to draft.
func (d *Document) Reject(reason string, now time.Time) error {
	if d.Status != StatusInReview {
		return d.illegal(StatusDraft)
	}
	d.Status = StatusDraft
	d.RejectionReason = strings.TrimSpace(reason)
	d.touch(now)
	return nil
}

// Archive marks the document VENCIDO. Archiving twice is illegal.
func (d *Document) Archive(now time.Time) error {
	if d.Status == StatusExpired {
		return d.illegal(StatusExpired)
	}
	d.Status = StatusExpired
	d.touch(now)
	return nil
}

// Restore brings an archived document back as a draft.
func (d *Document) Restore(now time.Time) error {
	if d.Status != StatusExpired {
		return d.illegal(StatusDraft)
	}
	d.Status = StatusDraft
	d.ApprovedBy = ""
	d.ApprovedAt = nil
	d.touch(now)
	return nil
}

// IncrementVersion bumps the major version: "1.0" becomes "2.0".
func (d *Document) IncrementVersion(now time.Time) error {
	if d.Status == StatusExpired {
		return frozen(d.Status)
	}
	major, _, _ := strings.Cut(d.Version, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n < 1 {
		n = 1
	}
	d.Version = fmt.Sprintf("%d.0", n+1)
	d.touch(now)
	return nil
}

// IsExpired reports whether the expiry date has passed. It is independent
// of the VENCIDO status, which is only set by Archive.
func (d *Document) IsExpired(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

// IsExpiringSoon reports whether a not-yet-expired document expires within
// the next days days.
func (d *Document) IsExpiringSoon(days int, now time.Time) bool {
	if d.ExpiryDate == nil || d.IsExpired(now) {
		return false
	}
	return !d.ExpiryDate.After(now.AddDate(0, 0, days))
}

func (d *Document) touch(now time.Time) {
	d.UpdatedAt = domain.Touch(d.UpdatedAt, now)
}

func (d *Document) illegal(to Status) error {
	return dErrors.InvalidTransition(EntityType, string(d.Status), string(to))
}

func frozen(s Status) error {
	return &dErrors.Error{
		Code:      dErrors.CodeInvalidTransition,
		Message:   "un documento VENCIDO no puede modificarse",
		Current:   string(s),
		Attempted: string(s),
	}
}
