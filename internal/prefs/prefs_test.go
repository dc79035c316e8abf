// internal/prefs/prefs_test.go
package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	v, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, s.Set(ctx, "theme", "light"))
	v, _, err = s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, closeFn, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { closeFn() })

	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/prefs.db"
	ctx := context.Background()

	store, closeFn, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "theme", "dark"))
	require.NoError(t, closeFn())

	store, closeFn, err = Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer closeFn()
	v, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestOpenDrivers(t *testing.T) {
	s, closeFn, err := Open(context.Background(), DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, closeFn())

	_, _, err = Open(context.Background(), "mysql", "x")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, _, err = Open(context.Background(), DriverPostgres, "")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))

	lite := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, "WHERE key = ?", lite.rebind("WHERE key = ?"))
}

func TestStoreSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	store, closeFn, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, store.Set(context.Background(), "theme", "dark"))
	_, _, err = store.Get(context.Background(), "theme")
	require.NoError(t, err)

	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}
	assert.Equal(t, []string{"prefs.migrate", "prefs.set", "prefs.get"}, names)
}

// setupPostgres connects with the PG* environment variables and skips the
// test if no server answers.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("PGHOST", "localhost"), envOr("PGPORT", "5432"), envOr("PGUSER", "user"),
		envOr("PGPASSWORD", "password"), envOr("PGDATABASE", "testdb"))

	db, err := sql.Open(DriverPostgres, connStr)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping postgres tests: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM preferences WHERE key = 'theme'`)
		db.Close()
	})
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPostgresStore(t *testing.T) {
	db := setupPostgres(t)
	store, err := NewSQLStore(context.Background(), db, DriverPostgres)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM preferences WHERE key = 'theme'`)
	require.NoError(t, err)

	exerciseStore(t, store)
}
