// internal/clients/resource_client_test.go
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"adminsync/internal/entity"
	"adminsync/internal/fakeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClient(t *testing.T) (*Client[entity.News], *fakeapi.Server) {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewClient[entity.News](srv.URL+"/api", "noticias"), api
}

func TestClientCRUD(t *testing.T) {
	client, api := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, entity.News{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, entity.ID("1"), created.ID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(api.Requests()[0].Body, &body))
	assert.NotContains(t, body, "id")

	items, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hello", items[0].Title)

	updated, err := client.Update(ctx, http.MethodPut, created.ID, entity.News{ID: created.ID, Title: "Bye", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "Bye", updated.Title)

	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bye", got.Title)

	require.NoError(t, client.Delete(ctx, created.ID))

	err = client.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientStatusErrors(t *testing.T) {
	client, api := newTestClient(t)

	api.FailNext(http.MethodGet, http.StatusInternalServerError)
	_, err := client.List(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.True(t, IsServerError(err))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient[entity.Tool](url+"/api", "herramientas")
	_, err := client.List(context.Background())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Method)
}

func TestClientRejectsUnknownUpdateMethod(t *testing.T) {
	client, api := newTestClient(t)
	_, err := client.Update(context.Background(), http.MethodPost, "1", entity.News{})
	require.Error(t, err)
	assert.Empty(t, api.Requests())
}

func TestClientEmptyMutationBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient[entity.Brand](srv.URL+"/api/", "/marcas/")
	_, err := client.Update(context.Background(), http.MethodPatch, "4", entity.Brand{Name: "Seat", Country: "ES"})
	assert.NoError(t, err)
}

func TestClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient[entity.Book](srv.URL, "libros")
	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClientRecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	client, _ := newTestClient(t)
	_, err := client.List(context.Background())
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "clients.get", spans[0].Name)
}

func TestClientCountsRequests(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	api := fakeapi.New()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := NewClient[entity.News](srv.URL+"/api", "noticias", WithMeterProvider(mp))

	ctx := context.Background()
	_, err := client.List(ctx)
	require.NoError(t, err)
	_, err = client.List(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Delete(ctx, "7"), ErrNotFound)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "adminsync.client.requests" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				res, _ := dp.Attributes.Value(attribute.Key("resource"))
				method, _ := dp.Attributes.Value(attribute.Key("method"))
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[res.AsString()+" "+method.AsString()+" "+outcome.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"noticias GET ok":       2,
		"noticias DELETE error": 1,
	}, counts)
}

func TestClientEscapesIDs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath()+"|"+r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := NewClient[entity.News](srv.URL+"/api", "noticias")
	ctx := context.Background()
	require.NoError(t, client.Delete(ctx, "a/b?c=1"))
	require.NoError(t, client.Delete(ctx, ".."))
	require.NoError(t, client.Delete(ctx, "12"))

	assert.Equal(t, []string{
		"/api/noticias/a%2Fb%3Fc=1|",
		"/api/noticias/%2E%2E|",
		"/api/noticias/12|",
	}, paths)
}
