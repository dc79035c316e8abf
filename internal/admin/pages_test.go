// internal/admin/pages_test.go
package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adminsync/internal/fakeapi"
	"adminsync/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(t *testing.T) (Deps, *fakeapi.Server, *notify.Center) {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	notes := notify.NewCenter(time.Hour)
	return Deps{BaseURL: srv.URL + "/api", Notes: notes}, api, notes
}

func TestResolveAliases(t *testing.T) {
	for name, want := range map[string]string{
		"books":        "books",
		"libros":       "books",
		" Carros ":     "cars",
		"herramientas": "tools",
		"marcas":       "brands",
		"noticias":     "news",
	} {
		m, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, m.Name)
	}

	_, err := Resolve("users")
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = NewPage("users", Deps{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestEveryKindBuildsAPage(t *testing.T) {
	deps, api, _ := newDeps(t)
	for _, m := range Kinds() {
		page, err := NewPage(m.Name, deps)
		require.NoError(t, err)
		assert.Equal(t, m.Name, page.Meta().Name)
		require.NoError(t, page.Load(context.Background()))
		assert.True(t, page.Loaded())
	}
	assert.Equal(t, len(Kinds())+1, api.CountRequests(http.MethodGet), "cars also lists brands")
}

func TestCarsPageLoadsBrandChoices(t *testing.T) {
	deps, api, _ := newDeps(t)
	api.Seed("marcas",
		fakeapi.Record{"nombre": "Seat", "pais": "ES"},
		fakeapi.Record{"nombre": "Kia", "pais": "KR"},
	)
	api.Seed("carros", fakeapi.Record{"marca": "Seat", "modelo": "Ibiza", "anio": 2004, "tipo": "hatchback"})

	page, err := NewPage("carros", deps)
	require.NoError(t, err)
	require.NoError(t, page.Load(context.Background()))

	assert.Equal(t, []string{"Seat", "Kia"}, page.FieldOptions("marca"))
	assert.Equal(t, "Total: 1 car", page.Summary())
}

func TestCarsPageSurvivesBrandFailure(t *testing.T) {
	deps, api, notes := newDeps(t)
	api.Seed("carros", fakeapi.Record{"marca": "Seat", "modelo": "Ibiza", "anio": 2004, "tipo": "hatchback"})
	api.FailNext(http.MethodGet, http.StatusInternalServerError)

	page, err := NewPage("cars", deps)
	require.NoError(t, err)
	require.NoError(t, page.Load(context.Background()))

	assert.Len(t, page.Table().Rows, 1)
	var warned bool
	for _, n := range notes.Active() {
		if n.Level == notify.Warning {
			warned = true
			assert.Contains(t, n.Text, "Could not load brands")
		}
	}
	assert.True(t, warned)
}
