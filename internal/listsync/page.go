// internal/listsync/page.go
package listsync

import (
	"context"

	"adminsync/internal/entity"
)

// Page is the type-independent view of a Synchronizer, used by front ends
// that drive several entity types.
type Page interface {
	Meta() entity.Meta
	Load(ctx context.Context) error
	Loaded() bool
	Table() Table
	Summary() string

	Form() entity.Form
	SetField(name, value string) error
	FieldOptions(name string) []string
	SetFieldOptions(name string, options []string) error
	ResetForm()
	Heading() string
	SubmitLabel() string
	Editing() (entity.ID, bool)
	Submit(ctx context.Context) error

	SelectForEdit(id entity.ID) error
	DeletePrompt(id entity.ID) (string, error)
	Remove(ctx context.Context, id entity.ID, confirm Confirmer) error

	SortOrder() SortOrder
	ToggleSort() SortOrder
	Filterable() bool
	SetGenreFilter(genres ...string)
}

var (
	_ Page = (*Synchronizer[entity.News])(nil)
	_ Page = (*Synchronizer[entity.Book])(nil)
)

// Lister is the read side of a Resource.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Choices lists a collection and maps each record to an option label, e.g.
// brand names for the cars form.
func Choices[T any](ctx context.Context, src Lister[T], label func(T) string) ([]string, error) {
	items, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, label(it))
	}
	return out, nil
}
