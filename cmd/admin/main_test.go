// cmd/admin/main_test.go
package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adminsync/internal/admin"
	"adminsync/internal/config"
	"adminsync/internal/fakeapi"
	"adminsync/internal/listsync"
	"adminsync/internal/notify"
	"adminsync/internal/prefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooksPage(t *testing.T) (listsync.Page, *fakeapi.Server) {
	t.Helper()
	api := fakeapi.New()
	api.Seed("libros",
		fakeapi.Record{"id": 1, "titulo": "<b>A</b>", "autor": "X", "precio": 3, "genero": "terror"},
	)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	page, err := admin.NewPage("books", admin.Deps{BaseURL: srv.URL + "/api", Notes: notify.NewCenter(time.Hour)})
	require.NoError(t, err)
	require.NoError(t, page.Load(context.Background()))
	return page, api
}

func TestWriteTableHTML(t *testing.T) {
	page, _ := newBooksPage(t)
	var out bytes.Buffer
	require.NoError(t, writeTable(&out, page, "html"))

	html := out.String()
	assert.Contains(t, html, `<tr class="g-terror" data-id="1">`)
	assert.Contains(t, html, "<td>&lt;b&gt;A&lt;/b&gt;</td>")
	assert.NotContains(t, html, "<b>A</b>")
	assert.Contains(t, html, "Total: 1 book")
}

func TestWriteTableText(t *testing.T) {
	page, _ := newBooksPage(t)
	var out bytes.Buffer
	require.NoError(t, writeTable(&out, page, "text"))
	assert.Contains(t, out.String(), "<b>A</b>")
	assert.Contains(t, out.String(), "€3.00")

	assert.Error(t, writeTable(&out, page, "csv"))
}

func TestRemoveAsksOnStdin(t *testing.T) {
	page, api := newBooksPage(t)
	var out bytes.Buffer

	err := remove(context.Background(), page, "1", strings.NewReader("n\n"), &out)
	assert.ErrorIs(t, err, listsync.ErrDeclined)
	assert.Contains(t, out.String(), `Are you sure you want to delete the book "<b>A</b>"? [y/N]`)
	assert.Zero(t, api.CountRequests(http.MethodDelete))

	require.NoError(t, remove(context.Background(), page, "1", strings.NewReader("yes\n"), &out))
	assert.Equal(t, 1, api.CountRequests(http.MethodDelete))
	assert.Empty(t, api.Records("libros"))
}

func TestToggleThemeCommand(t *testing.T) {
	store := prefs.NewMemoryStore()
	var out bytes.Buffer
	require.NoError(t, toggleTheme(context.Background(), store, &out))
	require.NoError(t, toggleTheme(context.Background(), store, &out))
	assert.Equal(t, "Theme: dark\nTheme: light\n", out.String())
}

func TestClientOptionsWithFaults(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, clientOptions(&cfg), 2)

	cfg.Faults.FailureRate = 0.5
	assert.Len(t, clientOptions(&cfg), 3)
}
