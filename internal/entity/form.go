// internal/entity/form.go
package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType describes how a form value is interpreted.
type FieldType int

const (
	Text FieldType = iota
	Integer
	Decimal
	Choice
)

// Field describes one input of an entity form.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Min      *float64
	Max      *float64
	Default  string
	Options  []string
}

// Form holds raw form values keyed by field name.
type Form map[string]string

// Get returns the trimmed value of a field.
func (f Form) Get(name string) string {
	return strings.TrimSpace(f[name])
}

// Clone returns an independent copy of the form.
func (f Form) Clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ValidationError reports a form value rejected before any request is sent.
type ValidationError struct {
	Field  string
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Label, e.Reason)
}

// Validate checks required fields and numeric bounds, in field order, and
// returns the first violation.
func Validate(fields []Field, form Form) error {
	for _, f := range fields {
		v := form.Get(f.Name)
		if v == "" {
			if f.Required {
				return &ValidationError{Field: f.Name, Label: f.Label, Reason: "is required"}
			}
			continue
		}

		var n float64
		switch f.Type {
		case Integer:
			i, err := strconv.Atoi(v)
			if err != nil {
				return &ValidationError{Field: f.Name, Label: f.Label, Reason: "must be a whole number"}
			}
			n = float64(i)
		case Decimal:
			d, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
				return &ValidationError{Field: f.Name, Label: f.Label, Reason: "must be a number"}
			}
			n = d
		default:
			continue
		}

		if reason, ok := checkBounds(n, f.Min, f.Max); !ok {
			return &ValidationError{Field: f.Name, Label: f.Label, Reason: reason}
		}
	}
	return nil
}

func checkBounds(n float64, min, max *float64) (string, bool) {
	switch {
	case min != nil && max != nil && (n < *min || n > *max):
		return fmt.Sprintf("must be between %s and %s", formatBound(*min), formatBound(*max)), false
	case min != nil && *min == 0 && n < 0:
		return "cannot be negative", false
	case min != nil && n < *min:
		return fmt.Sprintf("must be at least %s", formatBound(*min)), false
	case max != nil && n > *max:
		return fmt.Sprintf("must be at most %s", formatBound(*max)), false
	}
	return "", true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func bound(f float64) *float64 {
	return &f
}
