package litedao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"sync"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/dialect/sql"
	"github.com/syssam/litedao/dialect/sql/sqlgraph"
	"github.com/syssam/litedao/logging"
	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/field"
)

// DAO is the access object of the record type T. It owns the table of T,
// its prepared statements, the identifier counter and a pair of write
// buffers.
//
// Records may be submitted from any number of goroutines through
// AddToBuffer; a single goroutine is expected to call Flush. The statement
// executions of Flush never hold the buffer lock, so producers are only
// blocked for the buffer swap.
type DAO[T schema.Record] struct {
	db  *Database
	typ *schema.Type
	log *slog.Logger

	insert     dialect.Stmt
	selectAll  dialect.Stmt
	selectByID dialect.Stmt
	junctions  map[*field.Descriptor]*sqlgraph.Junction
	stmts      []dialect.Stmt

	// mu guards the buffers. flushMu serializes flushes, so the flush
	// buffer is owned by one flush at a time.
	mu      sync.Mutex
	write   []T
	flush   []T
	flushMu sync.Mutex

	idMu    sync.Mutex
	counter uint32

	errMu sync.RWMutex
	err   error
}

func failed[T schema.Record](db *Database, err error) *DAO[T] {
	d := &DAO[T]{db: db, log: db.log, err: err}
	if typ, derr := schema.Describe[T](); derr == nil {
		d.typ = typ
		d.log = db.log.With("table", typ.Name)
	}
	return d
}

// newDAO describes T, creates its tables, seeds the identifier counter and
// prepares the statements. A failing step leaves the DAO uninitialized.
func newDAO[T schema.Record](ctx context.Context, db *Database) *DAO[T] {
	typ, err := schema.Describe[T]()
	if err != nil {
		d := &DAO[T]{db: db, log: db.log, err: &InitError{Table: schema.TableName(reflect.TypeFor[T]()), Op: "describe", Err: err}}
		d.log.Error("invalid record type", "error", err)
		return d
	}
	d := &DAO[T]{
		db:        db,
		typ:       typ,
		log:       db.log.With("table", typ.Name),
		junctions: make(map[*field.Descriptor]*sqlgraph.Junction),
	}
	if err := d.init(ctx); err != nil {
		d.err = err
		d.log.Error("access object not initialized", "error", err)
		d.closeStmts()
		return d
	}
	d.log.Debug("access object initialized", "counter", d.counter)
	return d
}

func (d *DAO[T]) init(ctx context.Context) error {
	drv := d.db.drv
	ddl := sql.CreateTable(d.typ)
	logging.Tracef(ctx, d.log, "create table: %s", ddl)
	if err := drv.Exec(ctx, ddl); err != nil {
		return d.initError("create table", err)
	}
	for _, f := range d.typ.Repeated() {
		ddl := sql.CreateJunction(d.typ, f)
		logging.Tracef(ctx, d.log, "create junction table: %s", ddl)
		if err := drv.Exec(ctx, ddl); err != nil {
			return d.initError("create junction table", err)
		}
	}
	if err := d.seedCounter(ctx); err != nil {
		return d.initError("read identifier counter", err)
	}
	var err error
	if d.insert, err = d.prepare(ctx, sql.Insert(d.typ)); err != nil {
		return d.initError("prepare insert", err)
	}
	if d.selectAll, err = d.prepare(ctx, sql.SelectAll(d.typ)); err != nil {
		return d.initError("prepare select", err)
	}
	if d.selectByID, err = d.prepare(ctx, sql.SelectByID(d.typ)); err != nil {
		return d.initError("prepare select by id", err)
	}
	for _, f := range d.typ.Repeated() {
		j := &sqlgraph.Junction{Table: d.typ.JunctionTable(f)}
		if j.Insert, err = d.prepare(ctx, sql.JunctionInsert(d.typ, f)); err != nil {
			return d.initError("prepare junction insert", err)
		}
		if j.Select, err = d.prepare(ctx, sql.JunctionSelect(d.typ, f)); err != nil {
			return d.initError("prepare junction select", err)
		}
		d.junctions[f] = j
	}
	return nil
}

// seedCounter starts the counter at the largest stored identifier, so a
// reopened database never issues an identifier twice.
func (d *DAO[T]) seedCounter(ctx context.Context) error {
	rows, err := d.db.drv.Query(ctx, sql.MaxID(d.typ))
	if err != nil {
		return err
	}
	defer rows.Close()
	var maxID sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&maxID); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if maxID.Int64 < 0 || maxID.Int64 > math.MaxUint32 {
		return errors.New("stored identifier out of range")
	}
	d.counter = uint32(maxID.Int64)
	return nil
}

func (d *DAO[T]) prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	logging.Tracef(ctx, d.log, "prepare: %s", query)
	stmt, err := d.db.drv.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	d.stmts = append(d.stmts, stmt)
	return stmt, nil
}

func (d *DAO[T]) initError(op string, err error) error {
	return &InitError{Table: d.typ.Name, Op: op, Err: err}
}

// ready reports if the DAO can execute statements, logging op otherwise.
func (d *DAO[T]) ready(ctx context.Context, op string) bool {
	if err := d.Err(); err != nil {
		d.log.ErrorContext(ctx, "access object not usable", "op", op, "error", err)
		return false
	}
	return true
}

// Insert inserts rec, including its nested records and the elements of its
// repeated fields. A record without an identifier is assigned the next
// counter value, written back into rec. A record whose identifier was set
// by the caller is accepted only above the counter, which then advances to
// it; an identifier at or below the counter is rejected without touching
// storage.
//
// Insert reports whether the row of rec was written. Failures are logged.
func (d *DAO[T]) Insert(ctx context.Context, rec *T) bool {
	if !d.ready(ctx, "insert") {
		return false
	}
	if rec == nil {
		d.log.ErrorContext(ctx, "insert of a nil record")
		return false
	}
	if !d.assignID(ctx, rec) {
		return false
	}
	return d.db.graph.Insert(ctx, d, d.insert, rec)
}

func (d *DAO[T]) assignID(ctx context.Context, rec *T) bool {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	id := d.typ.IDOf(rec)
	switch {
	case id == 0:
		if d.counter == math.MaxUint32 {
			d.log.ErrorContext(ctx, "identifier counter exhausted", "counter", d.counter)
			return false
		}
		d.counter++
		d.typ.SetID(rec, d.counter)
	case id <= d.counter:
		d.log.ErrorContext(ctx, "identifier was set manually at or below the counter", "id", id, "counter", d.counter)
		return false
	default:
		d.log.WarnContext(ctx, "identifier was set manually, advancing the counter", "id", id, "counter", d.counter)
		d.counter = id
	}
	return true
}

// AddToBuffer appends a copy of rec to the write buffer. It is safe for
// concurrent use.
func (d *DAO[T]) AddToBuffer(rec T) {
	d.mu.Lock()
	d.write = append(d.write, rec)
	d.mu.Unlock()
}

// Flush inserts the buffered records. The write buffer is swapped with the
// flush buffer under the lock; the records are then inserted without it.
// Flush reports whether every record was inserted; a failed record is
// logged and dropped.
func (d *DAO[T]) Flush(ctx context.Context) bool {
	if !d.ready(ctx, "flush") {
		return false
	}
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	d.write, d.flush = d.flush, d.write
	batch := d.flush
	d.mu.Unlock()

	ok := true
	for i := range batch {
		if !d.Insert(ctx, &batch[i]) {
			ok = false
		}
	}
	if len(batch) > 0 {
		d.log.DebugContext(ctx, "buffer flushed", "records", len(batch), "ok", ok)
	}

	d.mu.Lock()
	clear(batch)
	d.flush = batch[:0]
	d.mu.Unlock()
	return ok
}

// ClearBuffer drops the records of both buffers. It waits for a running
// Flush to finish.
func (d *DAO[T]) ClearBuffer() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.write)
	clear(d.flush)
	d.write, d.flush = d.write[:0], d.flush[:0]
}

// Buffered returns the number of records waiting in the write buffer.
func (d *DAO[T]) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.write)
}

// SelectAll returns every stored record, with nested records and repeated
// fields loaded. Foreign keys hold their identifier only.
func (d *DAO[T]) SelectAll(ctx context.Context) []T {
	if !d.ready(ctx, "select") {
		return nil
	}
	recs := d.db.graph.Select(ctx, d, d.selectAll)
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *rec.(*T))
	}
	return out
}

// SelectByID returns the record with the given identifier. The boolean is
// false if no such record exists.
func (d *DAO[T]) SelectByID(ctx context.Context, id uint32) (T, bool) {
	rec, ok := d.SelectRecord(ctx, id)
	if !ok {
		var zero T
		return zero, false
	}
	return *rec.(*T), true
}

// SelectRecord implements sqlgraph.Accessor.
func (d *DAO[T]) SelectRecord(ctx context.Context, id uint32) (any, bool) {
	if !d.ready(ctx, "select by id") {
		return nil, false
	}
	recs := d.db.graph.Select(ctx, d, d.selectByID, int64(id))
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

// InsertRecord implements sqlgraph.Accessor.
func (d *DAO[T]) InsertRecord(ctx context.Context, rec any) bool {
	p, ok := rec.(*T)
	if !ok {
		d.log.ErrorContext(ctx, "insert of a record of another type", "type", fmt.Sprintf("%T", rec))
		return false
	}
	return d.Insert(ctx, p)
}

// Type implements sqlgraph.Accessor.
func (d *DAO[T]) Type() *schema.Type {
	return d.typ
}

// Junction implements sqlgraph.Accessor.
func (d *DAO[T]) Junction(f *field.Descriptor) *sqlgraph.Junction {
	return d.junctions[f]
}

// NextID advances the identifier counter and returns its new value. The
// returned identifier is consumed: Insert never assigns it, and rejects a
// record carrying it.
func (d *DAO[T]) NextID() uint32 {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	if d.counter < math.MaxUint32 {
		d.counter++
	}
	return d.counter
}

// Counter returns the last identifier issued or accepted.
func (d *DAO[T]) Counter() uint32 {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	return d.counter
}

// Table returns the table name of T.
func (d *DAO[T]) Table() string {
	if d.typ == nil {
		return schema.TableName(reflect.TypeFor[T]())
	}
	return d.typ.Name
}

// Initialized reports if the table and statements of T were created.
func (d *DAO[T]) Initialized() bool {
	return d.Err() == nil
}

// Err returns the reason the DAO is not usable, or nil.
func (d *DAO[T]) Err() error {
	d.errMu.RLock()
	defer d.errMu.RUnlock()
	return d.err
}

func (d *DAO[T]) close() error {
	d.errMu.Lock()
	if d.err == nil {
		d.err = ErrClosed
	}
	d.errMu.Unlock()
	return d.closeStmts()
}

func (d *DAO[T]) closeStmts() error {
	errs := make([]error, 0, len(d.stmts))
	for _, stmt := range d.stmts {
		errs = append(errs, stmt.Close())
	}
	d.stmts = nil
	return NewAggregateError(errs...)
}

var _ sqlgraph.Accessor = (*DAO[schema.Record])(nil)
