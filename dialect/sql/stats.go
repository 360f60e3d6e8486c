package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/logging"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalPrepares is the total number of statements prepared.
	TotalPrepares atomic.Int64
	// TotalDuration is the total time spent executing queries.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of queries exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of query errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalPrepares: s.TotalPrepares.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalPrepares.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalPrepares int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average query duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d prepares=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalPrepares, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow query is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a Driver with query statistics collection. Executions
// of statements it prepared are recorded as well.
type StatsDriver struct {
	dialect.Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection.
// Queries taking longer than this duration will be counted as slow queries.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow queries.
// The hook is called whenever a query exceeds the slow threshold.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow queries to the given logger at warn level.
// This is a convenience wrapper around WithSlowQueryHook.
func WithSlowQueryLog(log *slog.Logger) StatsOption {
	log = logging.OrNop(log)
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		log.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps a Driver with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open("app.db", true)
//	statsDriver := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	db := litedao.NewDatabase(statsDriver)
//
//	// Later, check statistics:
//	stats := statsDriver.QueryStats().Stats()
//	fmt.Println(stats)
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Query executes a query and records statistics.
func (d *StatsDriver) Query(ctx context.Context, query string, args ...any) (dialect.Rows, error) {
	start := time.Now()
	rows, err := d.Driver.Query(ctx, query, args...)
	d.record(ctx, query, args, start, err, true)
	return rows, err
}

// Exec executes a statement and records statistics.
func (d *StatsDriver) Exec(ctx context.Context, query string, args ...any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args...)
	d.record(ctx, query, args, start, err, false)
	return err
}

// Prepare prepares a statement whose executions record statistics.
func (d *StatsDriver) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	d.stats.TotalPrepares.Add(1)
	stmt, err := d.Driver.Prepare(ctx, query)
	if err != nil {
		d.stats.Errors.Add(1)
		return nil, err
	}
	return &StatsStmt{Stmt: stmt, query: query, driver: d}, nil
}

func (d *StatsDriver) record(ctx context.Context, query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, args, duration)
		}
	}
}

// StatsStmt wraps a prepared statement with statistics collection.
type StatsStmt struct {
	dialect.Stmt
	query  string
	driver *StatsDriver
}

// Query executes the statement and records statistics.
func (s *StatsStmt) Query(ctx context.Context, args ...any) (dialect.Rows, error) {
	start := time.Now()
	rows, err := s.Stmt.Query(ctx, args...)
	s.driver.record(ctx, s.query, args, start, err, true)
	return rows, err
}

// Exec executes the statement and records statistics.
func (s *StatsStmt) Exec(ctx context.Context, args ...any) error {
	start := time.Now()
	err := s.Stmt.Exec(ctx, args...)
	s.driver.record(ctx, s.query, args, start, err, false)
	return err
}

// DebugDriver wraps a Driver with debug logging.
type DebugDriver struct {
	dialect.Driver
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// DebugWithLogger logs statements to the given logger at trace level.
func DebugWithLogger(log *slog.Logger) DebugOption {
	log = logging.OrNop(log)
	return DebugWithLog(func(ctx context.Context, v ...any) {
		log.Log(ctx, logging.LevelTrace, fmt.Sprint(v...))
	})
}

// NewDebugDriver wraps a Driver with debug logging. Without options,
// statements are logged at trace level to slog.Default.
//
// Example:
//
//	drv, _ := sql.Open("app.db", true)
//	debugDriver := sql.NewDebugDriver(drv, sql.DebugWithLog(func(ctx context.Context, v ...any) {
//	    log.Println(v...)
//	}))
//	db := litedao.NewDatabase(debugDriver)
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv}
	DebugWithLogger(slog.Default())(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query executes a query and logs it.
func (d *DebugDriver) Query(ctx context.Context, query string, args ...any) (dialect.Rows, error) {
	d.log(ctx, fmt.Sprintf("query: %s args: %v", query, args))
	return d.Driver.Query(ctx, query, args...)
}

// Exec executes a statement and logs it.
func (d *DebugDriver) Exec(ctx context.Context, query string, args ...any) error {
	d.log(ctx, fmt.Sprintf("exec: %s args: %v", query, args))
	return d.Driver.Exec(ctx, query, args...)
}

// Prepare prepares a statement whose executions are logged.
func (d *DebugDriver) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	d.log(ctx, fmt.Sprintf("prepare: %s", query))
	stmt, err := d.Driver.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return &DebugStmt{Stmt: stmt, query: query, log: d.log}, nil
}

// DebugStmt wraps a prepared statement with debug logging.
type DebugStmt struct {
	dialect.Stmt
	query string
	log   func(context.Context, ...any)
}

// Query executes the statement and logs it.
func (s *DebugStmt) Query(ctx context.Context, args ...any) (dialect.Rows, error) {
	s.log(ctx, fmt.Sprintf("stmt query: %s args: %v", s.query, args))
	return s.Stmt.Query(ctx, args...)
}

// Exec executes the statement and logs it.
func (s *DebugStmt) Exec(ctx context.Context, args ...any) error {
	s.log(ctx, fmt.Sprintf("stmt exec: %s args: %v", s.query, args))
	return s.Stmt.Exec(ctx, args...)
}

// Ensure interfaces are implemented.
var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Stmt   = (*StatsStmt)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Stmt   = (*DebugStmt)(nil)
)

// OpenWithStats opens a database connection with statistics collection enabled.
//
// Example:
//
//	drv, stats, err := sql.OpenWithStats("app.db", true,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db := litedao.NewDatabase(drv)
//
//	// Monitor statistics periodically
//	go func() {
//	    for range time.Tick(time.Minute) {
//	        s := stats.Stats()
//	        log.Printf("Query stats: %s", s)
//	    }
//	}()
func OpenWithStats(source string, allowWrite bool, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := Open(source, allowWrite)
	if err != nil {
		return nil, nil, err
	}
	statsDriver := NewStatsDriver(drv, opts...)
	return statsDriver, statsDriver.QueryStats(), nil
}
