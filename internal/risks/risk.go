// Package risks holds the risk register: probability × impact scoring,
// treatment controls and their periodic review.
package risks

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "risk"

// ReviewIntervalMonths schedules a control's next review when the caller
// does not pick a date.
const ReviewIntervalMonths = 6

type Status string

const (
	StatusIdentified  Status = "IDENTIFIED"
	StatusInTreatment Status = "IN_TREATMENT"
	StatusControlled  Status = "CONTROLLED"
	StatusClosed      Status = "CLOSED"
)

var Statuses = []string{
	string(StatusIdentified), string(StatusInTreatment), string(StatusControlled), string(StatusClosed),
}

type Rating string

const (
	RatingLow      Rating = "LOW"
	RatingMedium   Rating = "MEDIUM"
	RatingHigh     Rating = "HIGH"
	RatingCritical Rating = "CRITICAL"
)

var Ratings = []string{string(RatingLow), string(RatingMedium), string(RatingHigh), string(RatingCritical)}

type ControlType string

const (
	ControlPreventive ControlType = "PREVENTIVE"
	ControlDetective  ControlType = "DETECTIVE"
	ControlCorrective ControlType = "CORRECTIVE"
)

var ControlTypes = []string{string(ControlPreventive), string(ControlDetective), string(ControlCorrective)}

type Control struct {
	ID             string      `json:"id"`
	Description    string      `json:"description"`
	Type           ControlType `json:"type"`
	Responsible    string      `json:"responsible"`
	NextReviewDate *time.Time  `json:"nextReviewDate,omitempty"`
	LastReviewedAt *time.Time  `json:"lastReviewedAt,omitempty"`
	Effective      *bool       `json:"effective,omitempty"`
	ReviewNote     string      `json:"reviewNote,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type Risk struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	ProcessID   string     `json:"processId,omitempty"`
	Owner       string     `json:"owner"`
	Probability int        `json:"probability"`
	Impact      int        `json:"impact"`
	Status      Status     `json:"status"`
	Controls    []Control  `json:"controls"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	CloseReason string     `json:"closeReason,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (r *Risk) RecordID() string { return r.ID }

type Fields struct {
	CompanyID   string
	Title       string
	Description string
	Category    string
	ProcessID   string
	Owner       string
	Probability int
	Impact      int
}

func (f Fields) validate() error {
	return validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("title", "El título", f.Title, 3),
		validation.MaxLength("title", "El título", f.Title, validation.MaxShortText),
		validation.MaxLength("description", "La descripción", f.Description, validation.MaxLongText),
		validation.MinLength("owner", "El responsable", f.Owner, 2),
		validation.Range("probability", "La probabilidad", float64(f.Probability), 1, 5),
		validation.Range("impact", "El impacto", float64(f.Impact), 1, 5),
	)
}

func New(f Fields, now time.Time) (*Risk, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	r := &Risk{
		ID:        domain.NewID(),
		Status:    StatusIdentified,
		Controls:  []Control{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.apply(f)
	return r, nil
}

func (r *Risk) apply(f Fields) {
	r.CompanyID = strings.TrimSpace(f.CompanyID)
	r.Title = strings.TrimSpace(f.Title)
	r.Description = strings.TrimSpace(f.Description)
	r.Category = strings.TrimSpace(f.Category)
	r.ProcessID = strings.TrimSpace(f.ProcessID)
	r.Owner = strings.TrimSpace(f.Owner)
	r.Probability = f.Probability
	r.Impact = f.Impact
}

func (r *Risk) Fields() Fields {
	return Fields{
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ProcessID:   r.ProcessID,
		Owner:       r.Owner,
		Probability: r.Probability,
		Impact:      r.Impact,
	}
}

type Patch struct {
	Title       *string
	Description *string
	Category    *string
	ProcessID   *string
	Owner       *string
	Probability *int
	Impact      *int
}

func (p Patch) Merge(f Fields) Fields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.ProcessID != nil {
		f.ProcessID = *p.ProcessID
	}
	if p.Owner != nil {
		f.Owner = *p.Owner
	}
	if p.Probability != nil {
		f.Probability = *p.Probability
	}
	if p.Impact != nil {
		f.Impact = *p.Impact
	}
	return f
}

// Update reassesses an open risk. Closed risks are read-only.
func (r *Risk) Update(f Fields, now time.Time) error {
	if r.Status == StatusClosed {
		return r.illegal(StatusClosed)
	}
	if err := f.validate(); err != nil {
		return err
	}
	r.apply(f)
	r.touch(now)
	return nil
}

// Level is probability × impact, 1 to 25.
func (r *Risk) Level() int { return r.Probability * r.Impact }

func (r *Risk) Rating() Rating {
	switch l := r.Level(); {
	case l <= 4:
		return RatingLow
	case l <= 9:
		return RatingMedium
	case l <= 15:
		return RatingHigh
	default:
		return RatingCritical
	}
}

// ControlInput describes a new treatment control.
type ControlInput struct {
	Description    string
	Type           ControlType
	Responsible    string
	NextReviewDate *time.Time
}

// AddControl attaches a control. The first control puts an identified risk
// into treatment.
func (r *Risk) AddControl(in ControlInput, now time.Time) (Control, error) {
	if r.Status == StatusClosed {
		return Control{}, r.illegal(StatusInTreatment)
	}
	if err := validation.First(
		validation.MinLength("description", "La descripción del control", in.Description, 5),
		validation.MaxLength("description", "La descripción del control", in.Description, validation.MaxLongText),
		validation.OneOf("type", "El tipo de control", string(in.Type), ControlTypes...),
		validation.MinLength("responsible", "El responsable", in.Responsible, 2),
	); err != nil {
		return Control{}, err
	}
	c := Control{
		ID:             domain.NewID(),
		Description:    strings.TrimSpace(in.Description),
		Type:           in.Type,
		Responsible:    strings.TrimSpace(in.Responsible),
		NextReviewDate: in.NextReviewDate,
		CreatedAt:      now,
	}
	r.Controls = append(r.Controls, c)
	if r.Status == StatusIdentified {
		r.Status = StatusInTreatment
	}
	r.touch(now)
	return c, nil
}

// Review is the outcome of checking one control.
type Review struct {
	Effective bool
	Note      string
	// Next defaults to ReviewIntervalMonths after now.
	Next *time.Time
}

func (r *Risk) ReviewControl(controlID string, rv Review, now time.Time) (Control, error) {
	if r.Status == StatusClosed {
		return Control{}, r.illegal(StatusClosed)
	}
	c, err := r.control(controlID)
	if err != nil {
		return Control{}, err
	}
	if err := validation.MaxLength("note", "La nota", rv.Note, validation.MaxLongText); err != nil {
		return Control{}, err
	}
	next := now.AddDate(0, ReviewIntervalMonths, 0)
	if rv.Next != nil {
		if !rv.Next.After(now) {
			return Control{}, dErrors.Validation("nextReviewDate", "La próxima revisión debe ser una fecha futura")
		}
		next = *rv.Next
	}
	at, effective := now, rv.Effective
	c.LastReviewedAt = &at
	c.Effective = &effective
	c.ReviewNote = strings.TrimSpace(rv.Note)
	c.NextReviewDate = &next
	r.touch(now)
	return *c, nil
}

// MarkControlled records that the treatment brought the risk to an
// acceptable level.
func (r *Risk) MarkControlled(now time.Time) error {
	if r.Status != StatusInTreatment {
		return r.illegal(StatusControlled)
	}
	r.Status = StatusControlled
	r.touch(now)
	return nil
}

func (r *Risk) Close(reason string, now time.Time) error {
	if r.Status == StatusClosed {
		return r.illegal(StatusClosed)
	}
	at := now
	r.Status = StatusClosed
	r.ClosedAt = &at
	r.CloseReason = strings.TrimSpace(reason)
	r.touch(now)
	return nil
}

// OverdueControls counts the controls of an open risk whose review date
// has passed.
func (r *Risk) OverdueControls(now time.Time) int {
	if r.Status == StatusClosed {
		return 0
	}
	n := 0
	for _, c := range r.Controls {
		if c.NextReviewDate != nil && c.NextReviewDate.Before(now) {
			n++
		}
	}
	return n
}

func (r *Risk) HasOverdueControls(now time.Time) bool { return r.OverdueControls(now) > 0 }

func (r *Risk) control(id string) (*Control, error) {
	for i := range r.Controls {
		if r.Controls[i].ID == id {
			return &r.Controls[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "Control no encontrado")
}

func (r *Risk) touch(now time.Time) {
	r.UpdatedAt = domain.Touch(r.UpdatedAt, now)
}

func (r *Risk) illegal(to Status) error {
	return dErrors.InvalidTransition(EntityType, string(r.Status), string(to))
}
