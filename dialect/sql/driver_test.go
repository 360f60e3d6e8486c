package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/syssam/litedao/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		source     string
		allowWrite bool
		want       string
	}{
		{"app.db", true, "file:app.db?mode=rwc"},
		{"app.db", false, "file:app.db?mode=ro"},
		{"/var/lib/app.db", false, "file:/var/lib/app.db?mode=ro"},
		{"file:app.db", true, "file:app.db?mode=rwc"},
		{"file:app.db?cache=shared", false, "file:app.db?cache=shared&mode=ro"},
		{"file:app.db?mode=rw", false, "file:app.db?mode=rw"},
		{":memory:", true, ":memory:"},
		{":memory:", false, ":memory:?_pragma=query_only(1)"},
		{"file::memory:?cache=shared", false, "file::memory:?cache=shared&_pragma=query_only(1)"},
		{"file:mem?mode=memory", true, "file:mem?mode=memory"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.source, tt.allowWrite))
		})
	}
}

func TestOpenDB(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	assert.NotNil(t, drv)
	assert.Equal(t, dialect.SQLite, drv.Dialect())
	assert.Same(t, db, drv.DB())
}

func TestDialectMethod(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB("sqlite-traced", db)
	assert.Equal(t, dialect.SQLite, drv.Dialect())
	drv = OpenDB("other", db)
	assert.Equal(t, "other", drv.Dialect())
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	t.Run("SimpleQuery", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name FROM Widget").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Widget").AddRow(2, "Gadget"))

		rows, err := drv.Query(ctx, "SELECT id, name FROM Widget")
		require.NoError(t, err)
		var names []string
		for rows.Next() {
			var (
				id   int64
				name string
			)
			require.NoError(t, rows.Scan(&id, &name))
			names = append(names, name)
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())
		assert.Equal(t, []string{"Widget", "Gadget"}, names)
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("no such table: Widget"))

		_, err := drv.Query(ctx, "SELECT id FROM Widget")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query")
		assert.Contains(t, err.Error(), "no such table")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS Widget").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE IF NOT EXISTS Widget (id INTEGER, PRIMARY KEY(id))"))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("near \"TABEL\": syntax error"))
	err = drv.Exec(ctx, "CREATE TABEL Widget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialect/sql: exec")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverPrepare(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	prep := mock.ExpectPrepare(`INSERT INTO Widget \(id, name\) VALUES \(\?, \?\)`)
	prep.ExpectExec().WithArgs(int64(1), "a").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(int64(2), "b").WillReturnResult(sqlmock.NewResult(2, 1))
	prep.WillBeClosed()

	stmt, err := drv.Prepare(ctx, "INSERT INTO Widget (id, name) VALUES (?, ?)")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Widget (id, name) VALUES (?, ?)", stmt.(*Stmt).String())
	require.NoError(t, stmt.Exec(ctx, int64(1), "a"))
	require.NoError(t, stmt.Exec(ctx, int64(2), "b"))
	require.NoError(t, stmt.Close())

	mock.ExpectPrepare("SELECT").WillReturnError(errors.New("no such table: Gadget"))
	_, err = drv.Prepare(ctx, "SELECT id FROM Gadget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialect/sql: prepare")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStmtQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	prep := mock.ExpectPrepare(`SELECT id, price FROM Part WHERE id = \?`)
	prep.ExpectQuery().WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).AddRow(7, 9.99))
	prep.ExpectQuery().WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}))

	stmt, err := drv.Prepare(ctx, "SELECT id, price FROM Part WHERE id = ?")
	require.NoError(t, err)

	rows, err := stmt.Query(ctx, int64(7))
	require.NoError(t, err)
	require.True(t, rows.Next())
	var (
		id    NullInt64
		price NullFloat64
	)
	require.NoError(t, rows.Scan(&id, &price))
	assert.Equal(t, int64(7), id.Int64)
	assert.InDelta(t, 9.99, price.Float64, 1e-9)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Close())

	rows, err = stmt.Query(ctx, int64(8))
	require.NoError(t, err)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Close())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	_, err = drv.Query(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestNullValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"name", "blob"}).AddRow(nil, nil))

	rows, err := drv.Query(context.Background(), "SELECT name, blob FROM Widget")
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var (
		name NullString
		blob []byte
	)
	require.NoError(t, rows.Scan(&name, &blob))
	assert.False(t, name.Valid)
	assert.Nil(t, blob)
}

func TestOpenEmptySource(t *testing.T) {
	_, err := Open("", true)
	require.Error(t, err)
}

func TestOpenReadOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := Open(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestOpenCreateThenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	ctx := context.Background()

	drv, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE IF NOT EXISTS Widget (id INTEGER, name TEXT, PRIMARY KEY(id))"))
	require.NoError(t, drv.Exec(ctx, "INSERT INTO Widget (id, name) VALUES (?, ?)", int64(1), "Widget"))
	require.NoError(t, drv.Close())

	ro, err := Open(path, false)
	require.NoError(t, err)
	defer ro.Close()

	rows, err := ro.Query(ctx, "SELECT name FROM Widget WHERE id = ?", int64(1))
	require.NoError(t, err)
	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	require.NoError(t, rows.Close())
	assert.Equal(t, "Widget", name)

	assert.Error(t, ro.Exec(ctx, "INSERT INTO Widget (id, name) VALUES (?, ?)", int64(2), "Gadget"))
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	drv, err := Open(":memory:", true)
	require.NoError(t, err)
	defer drv.Close()

	// Every statement runs on the single pooled connection, so the
	// in-memory table stays visible.
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE t (id INTEGER)"))
	stmt, err := drv.Prepare(ctx, "INSERT INTO t (id) VALUES (?)")
	require.NoError(t, err)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, stmt.Exec(ctx, i))
	}
	require.NoError(t, stmt.Close())

	rows, err := drv.Query(ctx, "SELECT COUNT(*) FROM t")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var n int64
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Close())
	assert.Equal(t, int64(3), n)
}

func TestOpenMemoryReadOnly(t *testing.T) {
	drv, err := Open(":memory:", false)
	require.NoError(t, err)
	defer drv.Close()
	assert.Error(t, drv.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))
}
