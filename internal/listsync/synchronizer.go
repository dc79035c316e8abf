// internal/listsync/synchronizer.go

// Package listsync keeps a rendered list of records consistent with one REST
// collection and routes every mutation through the server.
package listsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"adminsync/internal/clients"
	"adminsync/internal/entity"
	"adminsync/internal/notify"
)

var (
	ErrUnknownRecord = errors.New("record not in the loaded collection")
	ErrDeclined      = errors.New("deletion not confirmed")
	ErrUnknownField  = errors.New("unknown form field")
)

// Resource is the REST collection a Synchronizer mirrors.
type Resource[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id entity.ID) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, method string, id entity.ID, rec T) (T, error)
	Delete(ctx context.Context, id entity.ID) error
}

// Notifier shows transient banners.
type Notifier interface {
	Post(level notify.Level, text string) notify.Notification
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Approved is for callers that obtained the user's confirmation themselves
// before calling Remove.
var Approved = ConfirmFunc(func(string) bool { return true })

// Synchronizer is the controller of one entity page: the local mirror of the
// collection, the edit cursor, the form and the render overlay.
//
// The mutex only protects memory. Operations are not sequenced against each
// other: two overlapping loads race and whichever finishes last replaces the
// mirror.
type Synchronizer[T any] struct {
	kind   entity.Kind[T]
	api    Resource[T]
	notes  Notifier
	logger *slog.Logger

	mu          sync.Mutex
	mirror      []T
	table       Table
	loaded      bool
	cursor      entity.ID
	form        entity.Form
	heading     string
	submitLabel string
	overlay     Overlay
	options     map[string][]string
}

// Option configures a Synchronizer.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New creates a Synchronizer with an empty mirror and a blank form.
func New[T any](kind entity.Kind[T], api Resource[T], notes Notifier, opts ...Option) *Synchronizer[T] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Synchronizer[T]{
		kind:    kind,
		api:     api,
		notes:   notes,
		logger:  cfg.logger.With("page", kind.Name),
		options: make(map[string][]string),
	}
	s.resetFormLocked()
	s.table = Render(kind, nil, s.overlay)
	return s
}

// Meta describes the page.
func (s *Synchronizer[T]) Meta() entity.Meta {
	return s.kind.Meta
}

// Load fetches the whole collection once. On success the mirror is replaced
// and re-rendered; on failure a banner is posted and the previous rows stay.
func (s *Synchronizer[T]) Load(ctx context.Context) error {
	items, err := s.api.List(ctx)
	if err != nil {
		s.notes.Post(notify.Error, fmt.Sprintf("Error loading %s: %v", s.kind.Name, err))
		return fmt.Errorf("load %s: %w", s.kind.Resource, err)
	}
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	s.mirror = items
	s.loaded = true
	s.table = Render(s.kind, s.mirror, s.overlay)
	s.mu.Unlock()

	s.logger.Debug("collection loaded", "count", len(items))
	return nil
}

// Loaded reports whether at least one load succeeded.
func (s *Synchronizer[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Records returns a copy of the local mirror in server order.
func (s *Synchronizer[T]) Records() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.mirror)
}

// Table returns the current rendering.
func (s *Synchronizer[T]) Table() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Summary is the record counter shown under the table.
func (s *Synchronizer[T]) Summary() string {
	s.mu.Lock()
	n := len(s.mirror)
	s.mu.Unlock()

	noun := s.kind.Noun
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("Total: %d %s", n, noun)
}

// Form returns a copy of the form values.
func (s *Synchronizer[T]) Form() entity.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

// SetField stores a raw form value.
func (s *Synchronizer[T]) SetField(name, value string) error {
	if _, ok := s.kind.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	s.mu.Lock()
	s.form[name] = value
	s.mu.Unlock()
	return nil
}

// FieldOptions returns the choices offered for a field.
func (s *Synchronizer[T]) FieldOptions(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if opts, ok := s.options[name]; ok {
		return slices.Clone(opts)
	}
	f, _ := s.kind.Field(name)
	return slices.Clone(f.Options)
}

// SetFieldOptions replaces the choices offered for a field.
func (s *Synchronizer[T]) SetFieldOptions(name string, options []string) error {
	if _, ok := s.kind.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	s.mu.Lock()
	s.options[name] = slices.Clone(options)
	s.mu.Unlock()
	return nil
}

// Heading is the form title, which names the record while editing.
func (s *Synchronizer[T]) Heading() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heading
}

// SubmitLabel is the submit button text.
func (s *Synchronizer[T]) SubmitLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLabel
}

// Editing returns the edit cursor.
func (s *Synchronizer[T]) Editing() (entity.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, !s.cursor.IsZero()
}

// ResetForm clears the form and the edit cursor.
func (s *Synchronizer[T]) ResetForm() {
	s.mu.Lock()
	s.resetFormLocked()
	s.mu.Unlock()
}

func (s *Synchronizer[T]) resetFormLocked() {
	s.form = s.kind.EmptyForm()
	s.cursor = ""
	s.heading = s.kind.CreateHeading()
	s.submitLabel = s.kind.CreateLabel()
}

// Submit validates the form and sends one create request (no edit cursor) or
// one update request for the cursor. Validation failures never reach the
// network. On success the form is cleared and the collection reloaded; on
// failure the form is kept so the user can retry.
func (s *Synchronizer[T]) Submit(ctx context.Context) error {
	s.mu.Lock()
	form := s.form.Clone()
	cursor := s.cursor
	s.mu.Unlock()

	if err := s.kind.Validate(form); err != nil {
		s.notes.Post(notify.Warning, err.Error())
		return err
	}

	rec := s.kind.FromForm(form)
	label := s.kind.Label(rec)

	var err error
	verb := "created"
	if cursor.IsZero() {
		_, err = s.api.Create(ctx, rec)
	} else {
		verb = "updated"
		if s.kind.SendsIDOnUpdate() {
			rec = s.kind.WithID(rec, cursor)
		}
		_, err = s.api.Update(ctx, s.kind.UpdateMethod, cursor, rec)
	}
	if err != nil {
		action := "create"
		if verb == "updated" {
			action = "update"
		}
		s.notes.Post(notify.Error, fmt.Sprintf("Failed to %s %s %q: %v", action, s.kind.Noun, label, err))
		return fmt.Errorf("%s %s: %w", action, s.kind.Noun, err)
	}

	s.notes.Post(notify.Success, fmt.Sprintf("%s %q %s", s.kind.Capitalized(), label, verb))
	s.ResetForm()
	// A failed reload has already posted its own banner.
	_ = s.Load(ctx)
	return nil
}

// SelectForEdit copies a record from the local mirror into the form and sets
// the edit cursor. It does not fetch the record again.
func (s *Synchronizer[T]) SelectForEdit(id entity.ID) error {
	s.mu.Lock()
	rec, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		s.notes.Post(notify.Error, fmt.Sprintf("%s %s not found", s.kind.Capitalized(), id))
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}

	form := s.kind.EmptyForm()
	for k, v := range s.kind.ToForm(rec) {
		form[k] = v
	}
	label := s.kind.Label(rec)
	s.form = form
	s.cursor = id
	s.heading = s.kind.EditHeading(label)
	s.submitLabel = s.kind.EditLabel()
	s.mu.Unlock()

	s.notes.Post(notify.Info, fmt.Sprintf("Editing %s %q", s.kind.Noun, label))
	return nil
}

// DeletePrompt returns the confirmation question for deleting id.
func (s *Synchronizer[T]) DeletePrompt(id entity.ID) (string, error) {
	s.mu.Lock()
	rec, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	return s.kind.DeletePrompt(rec), nil
}

// Remove deletes id after confirm approves. A declined prompt sends nothing.
// A 404 is reported as "already gone", distinct from server failures.
func (s *Synchronizer[T]) Remove(ctx context.Context, id entity.ID, confirm Confirmer) error {
	s.mu.Lock()
	rec, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		s.notes.Post(notify.Error, fmt.Sprintf("%s %s not found", s.kind.Capitalized(), id))
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}

	if confirm == nil || !confirm.Confirm(s.kind.DeletePrompt(rec)) {
		return ErrDeclined
	}

	label := s.kind.Label(rec)
	err := s.api.Delete(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, clients.ErrNotFound):
		s.notes.Post(notify.Error, fmt.Sprintf("The %s %q no longer exists on the server", s.kind.Noun, label))
		return fmt.Errorf("delete %s %s: %w", s.kind.Noun, id, err)
	case clients.IsServerError(err):
		s.notes.Post(notify.Error, fmt.Sprintf("Failed to delete %s %q: server error", s.kind.Noun, label))
		return fmt.Errorf("delete %s %s: %w", s.kind.Noun, id, err)
	default:
		s.notes.Post(notify.Error, fmt.Sprintf("Failed to delete %s %q: %v", s.kind.Noun, label, err))
		return fmt.Errorf("delete %s %s: %w", s.kind.Noun, id, err)
	}

	s.mu.Lock()
	if s.cursor == id {
		s.resetFormLocked()
	}
	s.mu.Unlock()

	s.notes.Post(notify.Success, fmt.Sprintf("%s %q deleted", s.kind.Capitalized(), label))
	_ = s.Load(ctx)
	return nil
}

// Inspect fetches a single record from the server without touching the
// mirror or the form.
func (s *Synchronizer[T]) Inspect(ctx context.Context, id entity.ID) (T, error) {
	rec, err := s.api.Get(ctx, id)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			s.notes.Post(notify.Error, fmt.Sprintf("%s %s not found on the server", s.kind.Capitalized(), id))
		} else {
			s.notes.Post(notify.Error, fmt.Sprintf("Error loading %s %s: %v", s.kind.Noun, id, err))
		}
		var zero T
		return zero, fmt.Errorf("get %s %s: %w", s.kind.Noun, id, err)
	}
	return rec, nil
}

// SortOrder returns the active sort overlay.
func (s *Synchronizer[T]) SortOrder() SortOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay.Order
}

// ToggleSort advances the price sort overlay and re-renders. Pages without a
// price column stay unordered.
func (s *Synchronizer[T]) ToggleSort() SortOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind.Price == nil {
		return Unordered
	}
	s.overlay.Order = s.overlay.Order.Next()
	s.table = Render(s.kind, s.mirror, s.overlay)
	return s.overlay.Order
}

// SetSortOrder sets the price sort overlay and re-renders.
func (s *Synchronizer[T]) SetSortOrder(order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind.Price == nil {
		return
	}
	s.overlay.Order = order
	s.table = Render(s.kind, s.mirror, s.overlay)
}

// Filterable reports whether the page offers the genre filter.
func (s *Synchronizer[T]) Filterable() bool {
	return s.kind.Filterable()
}

// SetGenreFilter shows only the listed genres; no genres shows everything.
func (s *Synchronizer[T]) SetGenreFilter(genres ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(genres) == 0 {
		s.overlay.Genres = nil
	} else {
		s.overlay.Genres = make(map[string]bool, len(genres))
		for _, g := range genres {
			s.overlay.Genres[g] = true
		}
	}
	s.table = Render(s.kind, s.mirror, s.overlay)
}

func (s *Synchronizer[T]) findLocked(id entity.ID) (T, bool) {
	for _, rec := range s.mirror {
		if s.kind.ID(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}
