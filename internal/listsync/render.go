// internal/listsync/render.go
package listsync

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"adminsync/internal/entity"
)

// SortOrder is the render-only ordering applied over the price column.
type SortOrder int

const (
	Unordered SortOrder = iota
	Ascending
	Descending
)

// Next returns the order selected by clicking the price header: the first
// click sorts ascending, later clicks flip between ascending and descending.
func (o SortOrder) Next() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unordered"
	}
}

func (o SortOrder) indicator() string {
	switch o {
	case Ascending:
		return "↑"
	case Descending:
		return "↓"
	default:
		return ""
	}
}

// Overlay holds the render-only view settings. It never changes the records
// it is applied to.
type Overlay struct {
	Order SortOrder
	// Genres restricts rows to the listed genres; empty shows everything.
	Genres map[string]bool
}

// Action identifies a row control.
type Action int

const (
	Edit Action = iota
	Delete
)

// Binding ties a row control to the identifier of the record it acts on.
type Binding struct {
	Action Action
	ID     entity.ID
}

// Row is the view-model of one record.
type Row struct {
	ID entity.ID
	// Cells holds markup-safe text: every special character is escaped.
	Cells []string
	// Text holds the same values with control characters removed, for
	// terminal output.
	Text   []string
	Class  string
	Edit   Binding
	Delete Binding
}

// Column is a table header.
type Column struct {
	Title     string
	Indicator string
}

// Label returns the header text including the sort indicator.
func (c Column) Label() string {
	if c.Indicator == "" {
		return c.Title
	}
	return c.Title + " " + c.Indicator
}

// Table is the rendered view of a collection.
type Table struct {
	Columns []Column
	Rows    []Row
	// Total counts the records before filtering.
	Total int
}

// Render maps records to rows. It sorts and filters a copy of records.
func Render[T any](kind entity.Kind[T], records []T, overlay Overlay) Table {
	view := slices.Clone(records)

	if kind.Price != nil && overlay.Order != Unordered {
		slices.SortStableFunc(view, func(a, b T) int {
			c := cmp.Compare(kind.Price(a), kind.Price(b))
			if overlay.Order == Descending {
				return -c
			}
			return c
		})
	}

	if kind.Genre != nil && len(overlay.Genres) > 0 {
		view = slices.DeleteFunc(view, func(rec T) bool {
			return !overlay.Genres[kind.Genre(rec)]
		})
	}

	table := Table{
		Columns: make([]Column, len(kind.Columns)),
		Rows:    make([]Row, 0, len(view)),
		Total:   len(records),
	}
	for i, title := range kind.Columns {
		table.Columns[i] = Column{Title: title}
		if i == kind.SortColumn {
			table.Columns[i].Indicator = overlay.Order.indicator()
		}
	}

	for _, rec := range view {
		id := kind.ID(rec)
		raw := kind.Cells(rec)
		row := Row{
			ID:     id,
			Cells:  make([]string, len(raw)),
			Text:   make([]string, len(raw)),
			Edit:   Binding{Action: Edit, ID: id},
			Delete: Binding{Action: Delete, ID: id},
		}
		for i, v := range raw {
			row.Cells[i] = EscapeHTML(v)
			row.Text[i] = StripControl(v)
		}
		if kind.Genre != nil {
			row.Class = "g-" + EscapeHTML(kind.Genre(rec))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five markup-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// StripControl removes control characters, which covers terminal escape
// sequences and embedded newlines.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
