package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/litedao/dialect"

	// Registers the pure Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// Driver is a dialect.Driver implementation for the embedded SQLite engine.
type Driver struct {
	Conn
	dialect string
}

// NewDriver creates a new Driver with the given Conn and dialect.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{dialect: dialect, Conn: c}
}

// Open opens the database file or URI at source and returns a Driver bound
// to it. When allowWrite is set the file is created if it does not exist;
// otherwise it is opened read-only and a missing file is an error.
//
// The pool is limited to a single connection: an in-memory database lives
// on one connection, and the engine connection is shared by all prepared
// statements. The connection is established before Open returns.
func Open(source string, allowWrite bool) (*Driver, error) {
	if source == "" {
		return nil, errors.New("dialect/sql: empty data source")
	}
	db, err := sql.Open(dialect.SQLite, DSN(source, allowWrite))
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", source, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("dialect/sql: open %s: %w", source, err), db.Close())
	}
	return OpenDB(dialect.SQLite, db), nil
}

// OpenDB wraps the given database/sql.DB method with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{db})
}

// DSN returns the data source name passed to the engine for source.
//
//	DSN("app.db", true)      // file:app.db?mode=rwc
//	DSN("app.db", false)     // file:app.db?mode=ro
//	DSN(":memory:", false)   // :memory:?_pragma=query_only(1)
//
// A source that already selects a mode is returned unchanged.
func DSN(source string, allowWrite bool) string {
	if isMemory(source) {
		if allowWrite {
			return source
		}
		return withParam(source, "_pragma=query_only(1)")
	}
	if !strings.HasPrefix(source, "file:") {
		source = "file:" + source
	}
	if strings.Contains(source, "mode=") {
		return source
	}
	if allowWrite {
		return withParam(source, "mode=rwc")
	}
	return withParam(source, "mode=ro")
}

func isMemory(source string) bool {
	return source == ":memory:" ||
		strings.HasPrefix(source, ":memory:?") ||
		strings.HasPrefix(source, "file::memory:") ||
		strings.Contains(source, "mode=memory")
}

func withParam(source, param string) string {
	if strings.Contains(source, "?") {
		return source + "&" + param
	}
	return source + "?" + param
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect implements the dialect.Dialect method.
func (d Driver) Dialect() string {
	// If the underlying driver is wrapped with a telemetry driver.
	if strings.HasPrefix(d.dialect, dialect.SQLite) {
		return dialect.SQLite
	}
	return d.dialect
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// ExecQuerier wraps the standard Exec, Query and Prepare methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier.
type Conn struct {
	ExecQuerier
}

// Exec implements the dialect.Exec method.
func (c Conn) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := c.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return nil
}

// Query implements the dialect.Query method.
func (c Conn) Query(ctx context.Context, query string, args ...any) (dialect.Rows, error) {
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return &Rows{rows}, nil
}

// Prepare implements the dialect.Prepare method.
func (c Conn) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	stmt, err := c.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: prepare: %w", err)
	}
	return &Stmt{stmt: stmt, query: query}, nil
}

// Stmt wraps a prepared *sql.Stmt.
type Stmt struct {
	stmt  *sql.Stmt
	query string
}

// Exec executes the statement with the given arguments.
func (s *Stmt) Exec(ctx context.Context, args ...any) error {
	if _, err := s.stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return nil
}

// Query executes the statement and returns its rows.
func (s *Stmt) Query(ctx context.Context, args ...any) (dialect.Rows, error) {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return &Rows{rows}, nil
}

// Close finalizes the statement.
func (s *Stmt) Close() error { return s.stmt.Close() }

// String returns the statement text.
func (s *Stmt) String() string { return s.query }

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Stmt   = (*Stmt)(nil)
	_ dialect.Rows   = (*Rows)(nil)
)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullInt64 is an alias to sql.NullInt64.
	NullInt64 = sql.NullInt64
	// NullString is an alias to sql.NullString.
	NullString = sql.NullString
	// NullFloat64 is an alias to sql.NullFloat64.
	NullFloat64 = sql.NullFloat64
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}
