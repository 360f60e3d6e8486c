package sql

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/logging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(dialect.SQLite, db), mock
}

func TestStatsDriver(t *testing.T) {
	drv, mock := newMockDriver(t)
	stats := NewStatsDriver(drv)
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT").WillReturnError(errors.New("UNIQUE constraint failed: Widget.id"))

	require.NoError(t, stats.Exec(ctx, "CREATE TABLE IF NOT EXISTS Widget (id INTEGER, PRIMARY KEY(id))"))
	rows, err := stats.Query(ctx, "SELECT COALESCE(MAX(id), 0) FROM Widget")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.Error(t, stats.Exec(ctx, "INSERT INTO Widget (id) VALUES (?)", int64(1)))

	s := stats.QueryStats().Stats()
	assert.Equal(t, int64(1), s.TotalQueries)
	assert.Equal(t, int64(2), s.TotalExecs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Zero(t, s.TotalPrepares)
	assert.Contains(t, s.String(), "queries=1 execs=2")

	stats.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, stats.QueryStats().Stats())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriverPreparedStatements(t *testing.T) {
	drv, mock := newMockDriver(t)
	stats := NewStatsDriver(drv)
	ctx := context.Background()

	prep := mock.ExpectPrepare(`SELECT id FROM Widget WHERE id = \?`)
	prep.ExpectQuery().WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	prep.ExpectQuery().WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectPrepare("INSERT").WillReturnError(errors.New("no such table: Gadget"))

	stmt, err := stats.Prepare(ctx, "SELECT id FROM Widget WHERE id = ?")
	require.NoError(t, err)
	for _, id := range []int64{1, 2} {
		rows, err := stmt.Query(ctx, id)
		require.NoError(t, err)
		require.NoError(t, rows.Close())
	}
	_, err = stats.Prepare(ctx, "INSERT INTO Gadget (id) VALUES (?)")
	require.Error(t, err)

	s := stats.QueryStats().Stats()
	assert.Equal(t, int64(2), s.TotalPrepares)
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(1), s.Errors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriverSlowQuery(t *testing.T) {
	drv, mock := newMockDriver(t)
	var slow []string
	stats := NewStatsDriver(drv,
		WithSlowThreshold(0),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	mock.ExpectExec("DELETE").WillDelayFor(time.Millisecond).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, stats.Exec(context.Background(), "DELETE FROM Widget"))
	assert.Equal(t, []string{"DELETE FROM Widget"}, slow)
	assert.Equal(t, int64(1), stats.QueryStats().Stats().SlowQueries)

	stats.SetSlowThreshold(time.Hour)
	assert.Equal(t, time.Hour, stats.SlowThreshold())
}

func TestStatsDriverSlowQueryLog(t *testing.T) {
	drv, mock := newMockDriver(t)
	var buf bytes.Buffer
	stats := NewStatsDriver(drv,
		WithSlowThreshold(0),
		WithSlowQueryLog(logging.NewWriter(&buf, logging.Config{})),
	)
	mock.ExpectExec("DELETE").WillDelayFor(time.Millisecond).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, stats.Exec(context.Background(), "DELETE FROM Widget"))
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "DELETE FROM Widget")
}

func TestStatsSnapshotAvg(t *testing.T) {
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 1, TotalExecs: 3, TotalDuration: 8 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
}

func TestDebugDriver(t *testing.T) {
	drv, mock := newMockDriver(t)
	var logs []string
	debug := NewDebugDriver(drv, DebugWithLog(func(_ context.Context, v ...any) {
		for _, s := range v {
			logs = append(logs, s.(string))
		}
	}))
	ctx := context.Background()

	mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	prep := mock.ExpectPrepare("INSERT")
	prep.ExpectExec().WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, debug.Exec(ctx, "CREATE TABLE t (id INTEGER)"))
	rows, err := debug.Query(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	stmt, err := debug.Prepare(ctx, "INSERT INTO t (id) VALUES (?)")
	require.NoError(t, err)
	require.NoError(t, stmt.Exec(ctx, int64(1)))

	assert.Equal(t, []string{
		"exec: CREATE TABLE t (id INTEGER) args: []",
		"query: SELECT id FROM t args: []",
		"prepare: INSERT INTO t (id) VALUES (?)",
		"stmt exec: INSERT INTO t (id) VALUES (?) args: [1]",
	}, logs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebugDriverLogger(t *testing.T) {
	drv, mock := newMockDriver(t)
	var buf bytes.Buffer
	debug := NewDebugDriver(drv, DebugWithLogger(logging.NewWriter(&buf, logging.Config{Level: logging.Trace})))

	mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, debug.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))
	assert.True(t, strings.Contains(buf.String(), "level=TRACE"), buf.String())
	assert.Contains(t, buf.String(), "CREATE TABLE t (id INTEGER)")
}

func TestOpenWithStats(t *testing.T) {
	drv, stats, err := OpenWithStats(":memory:", true)
	require.NoError(t, err)
	defer drv.Close()

	require.NoError(t, drv.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))
	assert.Equal(t, int64(1), stats.Stats().TotalExecs)
	assert.Same(t, stats, drv.QueryStats())
}
