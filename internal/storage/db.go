package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DB wraps the database connection and the SQL dialect it speaks.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to the database and runs migrations. For sqlite the DSN is
// a file path; its directory is created when missing.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	case DriverMySQL:
		if !strings.Contains(dsn, "parseTime") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true&charset=utf8mb4"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// single writer, avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(10 * time.Minute)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Driver() string {
	return db.driver
}

// Ping checks the connection, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.rebind(query), args...)
}

func (db *DB) datetime() string {
	switch db.driver {
	case DriverPostgres:
		return "TIMESTAMPTZ"
	case DriverMySQL:
		return "DATETIME(6)"
	}
	return "DATETIME"
}

func (db *DB) migrate() error {
	dt := db.datetime()
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id VARCHAR(64) PRIMARY KEY,
			parent_id VARCHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			title TEXT NOT NULL,
			slug VARCHAR(255) NOT NULL,
			locale VARCHAR(16) NOT NULL,
			url_path VARCHAR(255) NOT NULL,
			live INTEGER NOT NULL DEFAULT 0,
			has_unpublished_changes INTEGER NOT NULL DEFAULT 0,
			latest_revision_id VARCHAR(64) NOT NULL,
			live_revision_id VARCHAR(64) NOT NULL,
			first_published_at ` + dt + ` NULL,
			last_published_at ` + dt + ` NULL,
			created_at ` + dt + ` NOT NULL,
			updated_at ` + dt + ` NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_pages_path ON pages(locale, url_path)`,
		`CREATE INDEX idx_pages_parent ON pages(parent_id)`,
		`CREATE TABLE IF NOT EXISTS revisions (
			id VARCHAR(64) PRIMARY KEY,
			page_id VARCHAR(64) NOT NULL,
			content_json TEXT NOT NULL,
			approved_go_live_at ` + dt + ` NULL,
			created_at ` + dt + ` NOT NULL
		)`,
		`CREATE INDEX idx_revisions_page ON revisions(page_id)`,
		`CREATE INDEX idx_revisions_go_live ON revisions(approved_go_live_at)`,
		`CREATE TABLE IF NOT EXISTS images (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			file VARCHAR(512) NOT NULL,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			created_at ` + dt + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			file VARCHAR(512) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			created_at ` + dt + ` NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// index and column migrations are not idempotent on every dialect
			if alreadyApplied(err) {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", firstLine(m), err)
		}
	}
	return nil
}

func alreadyApplied(err error) bool {
	msg := err.Error()
	for _, s := range []string{"duplicate column", "Duplicate column", "Duplicate key name", "already exists"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// now is the timestamp written by stores. UTC with microsecond precision
// compares the same on every dialect.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Truncate(time.Microsecond)
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
