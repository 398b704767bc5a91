package handler

import (
	"strings"
	"time"

	"qms/internal/suppliers"
	"qms/pkg/platform/validation"
)

type CreateRequest struct {
	CompanyID           string `json:"companyId"`
	Nombre              string `json:"nombre"`
	RUC                 string `json:"ruc"`
	Categoria           string `json:"categoria"`
	ProductosServicios  string `json:"productosServicios"`
	Contacto            string `json:"contacto"`
	Email               string `json:"email"`
	Telefono            string `json:"telefono"`
	Direccion           string `json:"direccion"`
	SiguienteEvaluacion string `json:"siguienteEvaluacion"`

	next *time.Time
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
	next, err := validation.OptionalDate("siguienteEvaluacion", "La siguiente evaluación", r.SiguienteEvaluacion)
	if err != nil {
		return err
	}
	r.next = next
	return nil
}

func (r *CreateRequest) Fields() suppliers.Fields {
	return suppliers.Fields{
		CompanyID:           r.CompanyID,
		Nombre:              r.Nombre,
		RUC:                 r.RUC,
		Categoria:           r.Categoria,
		ProductosServicios:  r.ProductosServicios,
		Contacto:            r.Contacto,
		Email:               r.Email,
		Telefono:            r.Telefono,
		Direccion:           r.Direccion,
		SiguienteEvaluacion: r.next,
	}
}

type UpdateRequest struct {
	Nombre              *string `json:"nombre"`
	RUC                 *string `json:"ruc"`
	Categoria           *string `json:"categoria"`
	ProductosServicios  *string `json:"productosServicios"`
	Contacto            *string `json:"contacto"`
	Email               *string `json:"email"`
	Telefono            *string `json:"telefono"`
	Direccion           *string `json:"direccion"`
	SiguienteEvaluacion *string `json:"siguienteEvaluacion"`

	next *time.Time
}

func (r *UpdateRequest) Normalize() {}

func (r *UpdateRequest) Validate() error {
	if r.SiguienteEvaluacion == nil {
		return nil
	}
	next, err := validation.Date("siguienteEvaluacion", "La siguiente evaluación", *r.SiguienteEvaluacion)
	if err != nil {
		return err
	}
	r.next = &next
	return nil
}

func (r *UpdateRequest) Patch() suppliers.Patch {
	return suppliers.Patch{
		Nombre:              r.Nombre,
		RUC:                 r.RUC,
		Categoria:           r.Categoria,
		ProductosServicios:  r.ProductosServicios,
		Contacto:            r.Contacto,
		Email:               r.Email,
		Telefono:            r.Telefono,
		Direccion:           r.Direccion,
		SiguienteEvaluacion: r.next,
	}
}

// EvaluationRequest is the body of POST /suppliers/{id}/evaluation.
type EvaluationRequest struct {
	Evaluacion          *float64 `json:"evaluacion"`
	Evaluador           string   `json:"evaluador"`
	Comentarios         string   `json:"comentarios"`
	SiguienteEvaluacion string   `json:"siguienteEvaluacion"`

	next *time.Time
}

func (r *EvaluationRequest) Normalize() {
	r.Evaluador = strings.TrimSpace(r.Evaluador)
}

func (r *EvaluationRequest) Validate() error {
	if r.Evaluacion == nil {
		return validation.Required("evaluacion", "", "La evaluación es obligatoria")
	}
	next, err := validation.OptionalDate("siguienteEvaluacion", "La siguiente evaluación", r.SiguienteEvaluacion)
	if err != nil {
		return err
	}
	r.next = next
	return nil
}

func (r *EvaluationRequest) Input() suppliers.EvaluationInput {
	return suppliers.EvaluationInput{
		Puntaje:     *r.Evaluacion,
		Evaluador:   r.Evaluador,
		Comentarios: r.Comentarios,
		Siguiente:   r.next,
	}
}
