// internal/tui/model_test.go
package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"adminsync/internal/clients"
	"adminsync/internal/entity"
	"adminsync/internal/fakeapi"
	"adminsync/internal/listsync"
	"adminsync/internal/notify"
	"adminsync/internal/prefs"
	"adminsync/internal/theme"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

// press sends keys in order and returns the command of the last one.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = press(m, string(r))
	}
	return m
}

// run executes cmd and feeds its message back to the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

type fixture struct {
	api   *fakeapi.Server
	notes *notify.Center
	store prefs.Store
}

func newBooksModel(t *testing.T) (Model, fixture) {
	t.Helper()
	api := fakeapi.New()
	api.Seed("libros",
		fakeapi.Record{"id": 1, "titulo": "A", "autor": "X", "precio": "10.5"},
		fakeapi.Record{"id": 2, "titulo": "B", "autor": "Y", "precio": 5},
	)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	notes := notify.NewCenter(time.Hour)
	page := listsync.New(entity.BookKind, clients.NewClient[entity.Book](srv.URL+"/api", "libros"), notes)
	store := prefs.NewMemoryStore()

	m := New(context.Background(), page, notes, store, theme.Light)
	m = run(t, m, m.load())
	return m, fixture{api: api, notes: notes, store: store}
}

func TestInitialRender(t *testing.T) {
	m, _ := newBooksModel(t)
	out := m.render()
	assert.Contains(t, out, "Digital Library")
	assert.Contains(t, out, "€10.50")
	assert.Contains(t, out, "Total: 2 books")
	assert.Contains(t, out, "s sort by price")
}

func TestSortKey(t *testing.T) {
	m, _ := newBooksModel(t)
	m, _ = press(m, "s")
	rows := m.page.Table().Rows
	assert.Equal(t, entity.ID("2"), rows[0].ID)
	assert.Contains(t, m.render(), "Price ↑")
}

func TestCreateThroughForm(t *testing.T) {
	m, fx := newBooksModel(t)

	m, _ = press(m, "n")
	assert.Equal(t, editing, m.mode)
	m = typeText(m, "Dune")
	m, _ = press(m, "tab")
	m = typeText(m, "Herbert")
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, browsing, m.mode)
	assert.Equal(t, 1, fx.api.CountRequests(http.MethodPost))
	assert.Len(t, fx.api.Records("libros"), 3)
	assert.Equal(t, "Total: 3 books", m.page.Summary())
}

func TestInvalidFormStaysOpen(t *testing.T) {
	m, fx := newBooksModel(t)

	m, _ = press(m, "n")
	m = typeText(m, "Only a title")
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, editing, m.mode)
	assert.Zero(t, fx.api.CountRequests(http.MethodPost))
	latest, ok := fx.notes.Latest()
	require.True(t, ok)
	assert.Equal(t, notify.Warning, latest.Level)
}

func TestEditAndCancel(t *testing.T) {
	m, fx := newBooksModel(t)

	m, _ = press(m, "j", "e")
	assert.Equal(t, editing, m.mode)
	id, ok := m.page.Editing()
	require.True(t, ok)
	assert.Equal(t, entity.ID("2"), id)
	assert.Contains(t, m.render(), "Editing: B")

	m, _ = press(m, "backspace", "esc")
	assert.Equal(t, browsing, m.mode)
	_, ok = m.page.Editing()
	assert.False(t, ok)
	assert.Zero(t, fx.api.CountRequests(http.MethodPut))
}

func TestGenreChoiceCycles(t *testing.T) {
	m, _ := newBooksModel(t)
	m, _ = press(m, "n", "tab", "tab", "tab", "tab", "tab")
	assert.Equal(t, "genero", m.page.Meta().Fields[m.field].Name)

	m, _ = press(m, "right")
	assert.Equal(t, entity.Genres[1], m.page.Form()["genero"])
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, fx := newBooksModel(t)

	m, _ = press(m, "d")
	assert.Equal(t, confirming, m.mode)
	assert.Contains(t, m.render(), `Are you sure you want to delete the book "A"?`)

	m, _ = press(m, "n")
	assert.Equal(t, browsing, m.mode)
	assert.Zero(t, fx.api.CountRequests(http.MethodDelete))

	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = run(t, m, cmd)
	assert.Equal(t, 1, fx.api.CountRequests(http.MethodDelete))
	assert.Len(t, m.page.Table().Rows, 1)
	assert.Equal(t, 0, m.row)
}

func TestThemeToggle(t *testing.T) {
	m, fx := newBooksModel(t)

	m, cmd := press(m, "t")
	m = run(t, m, cmd)
	assert.Equal(t, theme.Dark, m.theme)

	v, ok, err := fx.store.Get(context.Background(), theme.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestGenreFilterKey(t *testing.T) {
	m, _ := newBooksModel(t)

	m, _ = press(m, "g")
	assert.Contains(t, m.render(), "genre: ficcion")
	assert.Len(t, m.page.Table().Rows, 2, "books without a genre count as ficcion")

	m, _ = press(m, "g")
	assert.Empty(t, m.page.Table().Rows)
}

type readOnlyPage struct {
	listsync.Page
}

func (readOnlyPage) SetField(name, value string) error {
	return errors.New("form is read-only")
}

func TestRejectedFieldEditShowsBanner(t *testing.T) {
	m, fx := newBooksModel(t)
	m.page = readOnlyPage{Page: m.page}

	m, _ = press(m, "n")
	m = typeText(m, "x")

	latest, ok := fx.notes.Latest()
	require.True(t, ok)
	assert.Equal(t, notify.Error, latest.Level)
	assert.Equal(t, "form is read-only", latest.Text)
	assert.Empty(t, m.page.Form()["titulo"])
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b", "c"}
	assert.Equal(t, "b", cycle(opts, "a", 1))
	assert.Equal(t, "c", cycle(opts, "a", -1))
	assert.Equal(t, "a", cycle(opts, "zzz", 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
