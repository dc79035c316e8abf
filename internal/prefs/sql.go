// internal/prefs/sql.go
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	// DefaultSQLiteDSN is used when the sqlite driver is selected without a DSN.
	DefaultSQLiteDSN = "adminsync.db"
)

var ErrUnsupportedDriver = errors.New("unsupported preferences driver")

// SQLStore keeps preferences in a "preferences" table.
type SQLStore struct {
	db     *sql.DB
	driver string
	tracer trace.Tracer
}

// Open returns the store for driver: "memory", "sqlite" or "postgres". The SQL
// stores create their table if it is missing.
func Open(ctx context.Context, driver, dsn string) (Store, func() error, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	case "", DriverSQLite:
		driver = DriverSQLite
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, nil, fmt.Errorf("postgres preferences: empty DSN")
		}
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases alive across calls.
		db.SetMaxOpenConns(1)
	}

	store, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

// NewSQLStore wraps an open database and ensures the schema exists.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{
		db:     db,
		driver: driver,
		tracer: otel.Tracer("adminsync/prefs"),
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "prefs.migrate",
		trace.WithAttributes(attribute.String("db.system", s.driver)),
	)
	defer span.End()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("create preferences table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "prefs.get",
		trace.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("pref.key", key),
		),
	)
	defer span.End()

	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT value FROM preferences WHERE key = ?
	`), key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("pref.found", false))
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}

	span.SetAttributes(attribute.Bool("pref.found", true))
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "prefs.set",
		trace.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("pref.key", key),
		),
	)
	defer span.End()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`), key, value, time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// rebind rewrites "?" placeholders as "$1", "$2"... for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
