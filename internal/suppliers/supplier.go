// Package suppliers keeps approved-supplier records and their periodic
// evaluations. The approval estado is derived from the latest score.
package suppliers

import (
	"strings"
	"time"

	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/validation"
)

const EntityType = "supplier"

// EvaluationIntervalMonths schedules the next evaluation when the caller
// does not pick a date.
const EvaluationIntervalMonths = 12

// Score thresholds for the derived estado.
const (
	ApprovedThreshold    = 8.0
	ConditionalThreshold = 6.0
)

type Estado string

const (
	EstadoApproved          Estado = "APPROVED"
	EstadoConditional       Estado = "CONDITIONAL"
	EstadoNotApproved       Estado = "NOT_APPROVED"
	EstadoPendingEvaluation Estado = "PENDING_EVALUATION"
)

var Estados = []string{
	string(EstadoApproved), string(EstadoConditional),
	string(EstadoNotApproved), string(EstadoPendingEvaluation),
}

// Evaluation is one entry of the append-only history.
type Evaluation struct {
	ID          string    `json:"id"`
	Puntaje     float64   `json:"puntaje"`
	Evaluador   string    `json:"evaluador,omitempty"`
	Comentarios string    `json:"comentarios,omitempty"`
	Fecha       time.Time `json:"fecha"`
}

type Supplier struct {
	ID                  string              `json:"id"`
	CompanyID           string              `json:"companyId"`
	Nombre              string              `json:"nombre"`
	RUC                 string              `json:"ruc,omitempty"`
	Categoria           string              `json:"categoria,omitempty"`
	ProductosServicios  string              `json:"productosServicios,omitempty"`
	Contacto            string              `json:"contacto,omitempty"`
	Email               string              `json:"email,omitempty"`
	Telefono            string              `json:"telefono,omitempty"`
	Direccion           string              `json:"direccion,omitempty"`
	Evaluacion          *float64            `json:"evaluacion,omitempty"`
	UltimaEvaluacion    *time.Time          `json:"ultimaEvaluacion,omitempty"`
	SiguienteEvaluacion *time.Time          `json:"siguienteEvaluacion,omitempty"`
	Historial           []Evaluation        `json:"historialEvaluaciones"`
	Status              domain.RecordStatus `json:"status"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

func (s *Supplier) RecordID() string { return s.ID }

type Fields struct {
	CompanyID           string
	Nombre              string
	RUC                 string
	Categoria           string
	ProductosServicios  string
	Contacto            string
	Email               string
	Telefono            string
	Direccion           string
	SiguienteEvaluacion *time.Time
}

func (f Fields) validate() error {
	if err := validation.First(
		validation.Required("companyId", f.CompanyID, "La empresa es obligatoria"),
		validation.MinLength("nombre", "El nombre", f.Nombre, 2),
		validation.MaxLength("nombre", "El nombre", f.Nombre, validation.MaxShortText),
		validation.MaxLength("productosServicios", "Los productos o servicios", f.ProductosServicios, validation.MaxLongText),
	); err != nil {
		return err
	}
	if strings.TrimSpace(f.Email) != "" {
		return validation.Email("email", f.Email)
	}
	return nil
}

// New validates f and returns an active supplier pending its first
// evaluation.
func New(f Fields, now time.Time) (*Supplier, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	s := &Supplier{
		ID:        domain.NewID(),
		Historial: []Evaluation{},
		Status:    domain.RecordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(f)
	return s, nil
}

func (s *Supplier) apply(f Fields) {
	s.CompanyID = strings.TrimSpace(f.CompanyID)
	s.Nombre = strings.TrimSpace(f.Nombre)
	s.RUC = strings.TrimSpace(f.RUC)
	s.Categoria = strings.TrimSpace(f.Categoria)
	s.ProductosServicios = strings.TrimSpace(f.ProductosServicios)
	s.Contacto = strings.TrimSpace(f.Contacto)
	s.Email = strings.ToLower(strings.TrimSpace(f.Email))
	s.Telefono = strings.TrimSpace(f.Telefono)
	s.Direccion = strings.TrimSpace(f.Direccion)
	s.SiguienteEvaluacion = f.SiguienteEvaluacion
}

func (s *Supplier) Fields() Fields {
	return Fields{
		CompanyID:           s.CompanyID,
		Nombre:              s.Nombre,
		RUC:                 s.RUC,
		Categoria:           s.Categoria,
		ProductosServicios:  s.ProductosServicios,
		Contacto:            s.Contacto,
		Email:               s.Email,
		Telefono:            s.Telefono,
		Direccion:           s.Direccion,
		SiguienteEvaluacion: s.SiguienteEvaluacion,
	}
}

type Patch struct {
	Nombre              *string
	RUC                 *string
	Categoria           *string
	ProductosServicios  *string
	Contacto            *string
	Email               *string
	Telefono            *string
	Direccion           *string
	SiguienteEvaluacion *time.Time
}

func (p Patch) Merge(f Fields) Fields {
	if p.Nombre != nil {
		f.Nombre = *p.Nombre
	}
	if p.RUC != nil {
		f.RUC = *p.RUC
	}
	if p.Categoria != nil {
		f.Categoria = *p.Categoria
	}
	if p.ProductosServicios != nil {
		f.ProductosServicios = *p.ProductosServicios
	}
	if p.Contacto != nil {
		f.Contacto = *p.Contacto
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Telefono != nil {
		f.Telefono = *p.Telefono
	}
	if p.Direccion != nil {
		f.Direccion = *p.Direccion
	}
	if p.SiguienteEvaluacion != nil {
		f.SiguienteEvaluacion = p.SiguienteEvaluacion
	}
	return f
}

// Update edits an active supplier. A changed siguienteEvaluacion must lie
// in the future; an unchanged past date (an overdue evaluation) is kept.
func (s *Supplier) Update(f Fields, now time.Time) error {
	if s.Status == domain.RecordArchived {
		return dErrors.InvalidTransition(EntityType, string(s.Status), string(s.Status))
	}
	if err := f.validate(); err != nil {
		return err
	}
	if next := f.SiguienteEvaluacion; next != nil && !sameInstant(next, s.SiguienteEvaluacion) && !next.After(now) {
		return errPastEvaluation()
	}
	s.apply(f)
	s.touch(now)
	return nil
}

// EvaluationInput is a new score for the supplier.
type EvaluationInput struct {
	Puntaje     float64
	Evaluador   string
	Comentarios string
	// Siguiente defaults to EvaluationIntervalMonths after now.
	Siguiente *time.Time
}

// UpdateEvaluation records a score between 0 and 10, appends it to the
// history and schedules the next evaluation. Archived suppliers are not
// evaluated.
func (s *Supplier) UpdateEvaluation(in EvaluationInput, now time.Time) (Evaluation, error) {
	if s.Status != domain.RecordActive {
		return Evaluation{}, dErrors.InvalidTransition(EntityType, string(s.Status), "EVALUATED")
	}
	if err := validation.Range("evaluacion", "La evaluación", in.Puntaje, 0, 10); err != nil {
		return Evaluation{}, err
	}
	next := now.AddDate(0, EvaluationIntervalMonths, 0)
	if in.Siguiente != nil {
		if !in.Siguiente.After(now) {
			return Evaluation{}, errPastEvaluation()
		}
		next = *in.Siguiente
	}
	e := Evaluation{
		ID:          domain.NewID(),
		Puntaje:     in.Puntaje,
		Evaluador:   strings.TrimSpace(in.Evaluador),
		Comentarios: strings.TrimSpace(in.Comentarios),
		Fecha:       now,
	}
	score, at := in.Puntaje, now
	s.Evaluacion = &score
	s.UltimaEvaluacion = &at
	s.SiguienteEvaluacion = &next
	s.Historial = append(s.Historial, e)
	s.touch(now)
	return e, nil
}

// Estado derives the approval state from the latest score.
func (s *Supplier) Estado() Estado {
	switch {
	case s.Evaluacion == nil:
		return EstadoPendingEvaluation
	case *s.Evaluacion >= ApprovedThreshold:
		return EstadoApproved
	case *s.Evaluacion >= ConditionalThreshold:
		return EstadoConditional
	default:
		return EstadoNotApproved
	}
}

// EvaluationOverdue reports an active supplier whose next evaluation date
// has passed.
func (s *Supplier) EvaluationOverdue(now time.Time) bool {
	return s.Status == domain.RecordActive && s.SiguienteEvaluacion != nil && s.SiguienteEvaluacion.Before(now)
}

func (s *Supplier) Archive(now time.Time) error { return s.moveTo(domain.RecordArchived, now) }
func (s *Supplier) Restore(now time.Time) error { return s.moveTo(domain.RecordActive, now) }

func errPastEvaluation() error {
	return dErrors.Validation("siguienteEvaluacion", "La siguiente evaluación debe ser una fecha futura")
}

func sameInstant(a, b *time.Time) bool {
	return b != nil && a.Equal(*b)
}

func (s *Supplier) moveTo(next domain.RecordStatus, now time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return dErrors.InvalidTransition(EntityType, string(s.Status), string(next))
	}
	s.Status = next
	s.touch(now)
	return nil
}

func (s *Supplier) touch(now time.Time) {
	s.UpdatedAt = domain.Touch(s.UpdatedAt, now)
}
