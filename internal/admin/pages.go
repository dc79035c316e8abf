// internal/admin/pages.go

// Package admin builds the entity pages from configuration.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"adminsync/internal/clients"
	"adminsync/internal/entity"
	"adminsync/internal/listsync"
	"adminsync/internal/notify"
)

var ErrUnknownKind = errors.New("unknown entity type")

// Deps holds what every page needs.
type Deps struct {
	BaseURL       string
	Notes         listsync.Notifier
	ClientOptions []clients.Option
	Logger        *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Kinds lists the page names in menu order.
func Kinds() []entity.Meta {
	return []entity.Meta{
		entity.NewsKind.Meta,
		entity.ToolKind.Meta,
		entity.BrandKind.Meta,
		entity.CarKind.Meta,
		entity.BookKind.Meta,
	}
}

// Resolve maps a page name or its API path ("books" or "libros") to the page
// metadata.
func Resolve(name string) (entity.Meta, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Kinds() {
		if n == m.Name || n == m.Resource {
			return m, nil
		}
	}
	return entity.Meta{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// NewPage builds the page for name with its own REST client.
func NewPage(name string, deps Deps) (listsync.Page, error) {
	meta, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	switch meta.Name {
	case entity.NewsKind.Name:
		return newSync(entity.NewsKind, deps), nil
	case entity.ToolKind.Name:
		return newSync(entity.ToolKind, deps), nil
	case entity.BrandKind.Name:
		return newSync(entity.BrandKind, deps), nil
	case entity.CarKind.Name:
		return &carsPage{
			Page:   newSync(entity.CarKind, deps),
			brands: newClient(entity.BrandKind, deps),
			notes:  deps.Notes,
		}, nil
	case entity.BookKind.Name:
		return newSync(entity.BookKind, deps), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func newClient[T any](kind entity.Kind[T], deps Deps) *clients.Client[T] {
	opts := append([]clients.Option{clients.WithLogger(deps.logger())}, deps.ClientOptions...)
	return clients.NewClient[T](deps.BaseURL, kind.Resource, opts...)
}

func newSync[T any](kind entity.Kind[T], deps Deps) *listsync.Synchronizer[T] {
	return listsync.New(kind, newClient(kind, deps), deps.Notes, listsync.WithLogger(deps.logger()))
}

// LoadBrandChoices offers the current brand names as the cars "marca"
// options.
func LoadBrandChoices(ctx context.Context, page listsync.Page, brands listsync.Lister[entity.Brand]) error {
	names, err := listsync.Choices(ctx, brands, func(b entity.Brand) string { return b.Name })
	if err != nil {
		return fmt.Errorf("load brand choices: %w", err)
	}
	return page.SetFieldOptions("marca", names)
}

// carsPage refreshes the brand choices before each load of the cars list.
type carsPage struct {
	listsync.Page
	brands listsync.Lister[entity.Brand]
	notes  listsync.Notifier
}

func (p *carsPage) Load(ctx context.Context) error {
	if err := LoadBrandChoices(ctx, p.Page, p.brands); err != nil {
		p.notes.Post(notify.Warning, fmt.Sprintf("Could not load brands: %v", err))
	}
	return p.Page.Load(ctx)
}
