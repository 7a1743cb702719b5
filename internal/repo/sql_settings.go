package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type dialect struct {
	name   string
	driver string
	schema string
	get    string
	upsert string
}

var (
	postgresDialect = dialect{
		name:   "postgres",
		driver: "pgx",
		schema: `
			CREATE TABLE IF NOT EXISTS settings (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		get: `SELECT value FROM settings WHERE key = $1`,
		upsert: `
			INSERT INTO settings (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	}

	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite",
		schema: `
			CREATE TABLE IF NOT EXISTS settings (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		get: `SELECT value FROM settings WHERE key = ?`,
		upsert: `
			INSERT INTO settings (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE
			SET value = excluded.value, updated_at = excluded.updated_at`,
	}
)

// SQLSettings keeps settings in a single key/value table.
type SQLSettings struct {
	db *sql.DB
	d  dialect
}

func OpenPostgresSettings(ctx context.Context, url string) (*SQLSettings, error) {
	return openSQL(ctx, postgresDialect, url)
}

func OpenSQLiteSettings(ctx context.Context, path string) (*SQLSettings, error) {
	return openSQL(ctx, sqliteDialect, path)
}

func openSQL(ctx context.Context, d dialect, dsn string) (*SQLSettings, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, &StoreError{Driver: d.name, Op: "open", Err: err}
	}
	if d.name == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &StoreError{Driver: d.name, Op: "open", Err: err}
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, &StoreError{Driver: d.name, Op: "migrate", Err: err}
	}

	return &SQLSettings{db: db, d: d}, nil
}

func (s *SQLSettings) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreError{Driver: s.d.name, Op: "get", Key: key, Err: err}
	}
	return v, true, nil
}

func (s *SQLSettings) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, key, value, time.Now().UTC()); err != nil {
		return &StoreError{Driver: s.d.name, Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *SQLSettings) Close() error {
	return s.db.Close()
}
