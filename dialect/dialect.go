package dialect

import "context"

// SQLite is the name of the embedded engine dialect.
const SQLite = "sqlite"

// ExecQuerier wraps the methods for executing statements and queries.
type ExecQuerier interface {
	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) error
	// Query executes a query and returns its result rows. The caller must
	// close the rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Driver is the interface that wraps all necessary operations for the
// access objects.
type Driver interface {
	ExecQuerier
	// Prepare compiles the statement once for repeated execution.
	Prepare(ctx context.Context, query string) (Stmt, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Stmt is a prepared statement. Executing a statement resets its bindings,
// so the same Stmt may be executed any number of times. A Stmt is not
// safe for concurrent use; callers serialize executions.
type Stmt interface {
	Exec(ctx context.Context, args ...any) error
	Query(ctx context.Context, args ...any) (Rows, error)
	Close() error
}

// Rows is the result of a query. Its cursor starts before the first row.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
