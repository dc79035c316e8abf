// internal/entity/kind.go
package entity

import (
	"fmt"
	"net/http"
	"strings"
)

// Meta is the type-independent description of an entity page.
type Meta struct {
	// Name is the short page name used on the command line ("news").
	Name string
	// Resource is the collection segment under the API base ("noticias").
	Resource string
	// Noun names one record in messages ("news item").
	Noun         string
	Title        string
	UpdateMethod string
	Fields       []Field
	Columns      []string
	// SortColumn is the index of the price column, or -1 when the page has
	// no sort overlay.
	SortColumn int
}

// Sortable reports whether the page supports the price sort overlay.
func (m Meta) Sortable() bool {
	return m.SortColumn >= 0
}

// CreateHeading is the form heading while no record is being edited.
func (m Meta) CreateHeading() string {
	return "New " + m.Noun
}

// EditHeading is the form heading while the record labelled label is edited.
func (m Meta) EditHeading(label string) string {
	return "Editing: " + label
}

// CreateLabel is the submit button text in create mode.
func (m Meta) CreateLabel() string {
	return "Create " + m.Noun
}

// EditLabel is the submit button text in edit mode.
func (m Meta) EditLabel() string {
	return "Save changes"
}

// Capitalized returns the noun with an upper-case first letter.
func (m Meta) Capitalized() string {
	if m.Noun == "" {
		return ""
	}
	return strings.ToUpper(m.Noun[:1]) + m.Noun[1:]
}

// Field returns the field named name.
func (m Meta) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EmptyForm returns a form holding each field's default value.
func (m Meta) EmptyForm() Form {
	form := make(Form, len(m.Fields))
	for _, f := range m.Fields {
		form[f.Name] = f.Default
	}
	return form
}

// Kind binds a Meta to the record type T it describes.
type Kind[T any] struct {
	Meta

	ID     func(T) ID
	WithID func(T, ID) T
	// FromForm builds a record from a validated form.
	FromForm func(Form) T
	ToForm   func(T) Form
	// Cells returns the raw, unescaped text of each column.
	Cells func(T) []string
	// Label names the record in prompts and banners.
	Label func(T) string
	// Price is the sort key; nil when the page is not sortable.
	Price func(T) float64
	// Genre is the filter key; nil when the page has no genre filter.
	Genre func(T) string
}

// DeletePrompt is the question asked before deleting rec.
func (k Kind[T]) DeletePrompt(rec T) string {
	return fmt.Sprintf("Are you sure you want to delete the %s %q?", k.Noun, k.Label(rec))
}

// Validate checks form against the kind's fields.
func (k Kind[T]) Validate(form Form) error {
	return Validate(k.Fields, form)
}

// Filterable reports whether the page supports the genre filter.
func (k Kind[T]) Filterable() bool {
	return k.Genre != nil
}

func isPatch(method string) bool {
	return method == http.MethodPatch
}

// SendsIDOnUpdate reports whether update bodies carry the identifier. PUT
// replaces the whole representation; PATCH only sends the edited fields.
func (m Meta) SendsIDOnUpdate() bool {
	return !isPatch(m.UpdateMethod)
}
