// Package validation holds the field rules shared by entity constructors.
// Messages are user facing and returned verbatim in API responses.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	dErrors "qms/pkg/domain-errors"
)

// Size limits applied before any semantic check.
const (
	MaxShortText = 200
	MaxLongText  = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinLength fails when value (trimmed, counted in runes) is shorter than n.
// label is the subject of the message, e.g. "El nombre".
func MinLength(field, label, value string, n int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		return dErrors.Validation(field, fmt.Sprintf("%s debe tener al menos %d caracteres", label, n))
	}
	return nil
}

// MaxLength fails when value is longer than n runes.
func MaxLength(field, label, value string, n int) error {
	if utf8.RuneCountInString(value) > n {
		return dErrors.Validation(field, fmt.Sprintf("%s no puede superar %d caracteres", label, n))
	}
	return nil
}

// Email fails unless value looks like local@domain.tld.
func Email(field, value string) error {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return dErrors.Validation(field, "El email debe ser válido")
	}
	return nil
}

// Required fails with message when value is blank.
func Required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.Validation(field, message)
	}
	return nil
}

// RequiredTime fails with message when t is the zero time.
func RequiredTime(field string, t time.Time, message string) error {
	if t.IsZero() {
		return dErrors.Validation(field, message)
	}
	return nil
}

// OneOf fails unless value is one of allowed.
func OneOf(field, label, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return dErrors.Validation(field, fmt.Sprintf("%s debe ser uno de: %s", label, strings.Join(allowed, ", ")))
}

// Range fails unless lo <= v <= hi.
func Range(field, label string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return dErrors.Validation(field, fmt.Sprintf("%s debe estar entre %g y %g", label, lo, hi))
	}
	return nil
}

// First returns the first non-nil error, in order. Constructors list their
// checks with it so the reported field is deterministic.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Date parses raw as YYYY-MM-DD or RFC3339. Date-only values are midnight UTC.
func Date(field, label, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.Validation(field, label+" debe ser una fecha válida (YYYY-MM-DD o RFC3339)")
	}
	return t.UTC(), nil
}

// OptionalDate is Date for fields that may be omitted: blank yields nil.
func OptionalDate(field, label, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := Date(field, label, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
