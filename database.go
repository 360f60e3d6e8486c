package litedao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/dialect/sql"
	"github.com/syssam/litedao/dialect/sql/sqlgraph"
	"github.com/syssam/litedao/logging"
	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/field"
)

// Database owns a connection and the access objects of every record type
// used on it. Access objects are created on first use and live as long as
// the Database.
type Database struct {
	drv   dialect.Driver
	log   *slog.Logger
	id    uuid.UUID
	graph *sqlgraph.Graph
	// closers are released after the driver.
	closers []io.Closer

	mu     sync.Mutex
	daos   map[reflect.Type]accessor
	order  []accessor
	closed bool
}

// accessor is the type-erased view of a DAO held by the registry.
type accessor interface {
	sqlgraph.Accessor
	Table() string
	Initialized() bool
	Err() error
	Flush(ctx context.Context) bool
	ClearBuffer()
	close() error
}

// Open opens the database at url and returns its registry. With allowWrite,
// the database is opened read-write and created if it does not exist;
// otherwise it is opened read-only and must exist. Failures are reported as
// an *OpenError carrying the engine message.
//
//	db, err := litedao.Open("app.db", true, litedao.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func Open(url string, allowWrite bool, opts ...Option) (*Database, error) {
	drv, err := sql.Open(url, allowWrite)
	if err != nil {
		return nil, &OpenError{URL: url, AllowWrite: allowWrite, Err: err}
	}
	db := NewDatabase(drv, opts...)
	db.log.Info("database opened", "url", url, "allow_write", allowWrite)
	return db, nil
}

// NewDatabase returns a registry over an open driver. The registry takes
// ownership of drv and closes it on Close.
func NewDatabase(drv dialect.Driver, opts ...Option) *Database {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	db := &Database{
		drv:     drv,
		id:      o.id,
		log:     logging.OrNop(o.log).With("db", o.id.String()),
		daos:    make(map[reflect.Type]accessor),
		closers: o.closers,
	}
	db.graph = &sqlgraph.Graph{Resolver: db, Logger: db.log}
	return db
}

// For returns the access object of T on db, creating its table and
// statements on first use. If they cannot be created, the returned access
// object is not initialized and all its operations fail; see DAO.Err.
func For[T schema.Record](db *Database) *DAO[T] {
	rt := reflect.TypeFor[T]()
	db.mu.Lock()
	defer db.mu.Unlock()
	if a, ok := db.daos[rt]; ok {
		if d, ok := a.(*DAO[T]); ok {
			return d
		}
		// Unreachable: entries are stored under the type they were created for.
		return failed[T](db, fmt.Errorf("registry entry of %s holds %T", rt, a))
	}
	if db.closed {
		return failed[T](db, ErrClosed)
	}
	d := newDAO[T](context.Background(), db)
	db.daos[rt] = d
	db.order = append(db.order, d)
	return d
}

// Accessor implements sqlgraph.Resolver. It returns the access object of a
// related record type, creating it on first use.
func (db *Database) Accessor(ref *field.Ref) (sqlgraph.Accessor, error) {
	if ref == nil || ref.Type == nil {
		return nil, errors.New("litedao: invalid type reference")
	}
	db.mu.Lock()
	a, ok := db.daos[ref.Type]
	db.mu.Unlock()
	if !ok {
		if ref.Bind == nil {
			return nil, fmt.Errorf("litedao: no access object for %s", ref.Type)
		}
		if a, ok = ref.Bind(db).(accessor); !ok {
			return nil, fmt.Errorf("litedao: cannot bind access object for %s", ref.Type)
		}
	}
	if !a.Initialized() {
		return nil, a.Err()
	}
	return a, nil
}

// FlushAll flushes the buffers of every access object, in creation order.
// It reports whether every flush succeeded.
func (db *Database) FlushAll(ctx context.Context) bool {
	ok := true
	for _, a := range db.accessors() {
		if !a.Flush(ctx) {
			ok = false
		}
	}
	return ok
}

// ClearBuffers drops the buffered records of every access object.
func (db *Database) ClearBuffers() {
	for _, a := range db.accessors() {
		a.ClearBuffer()
	}
}

// Tables returns the tables of the access objects created so far, in
// creation order.
func (db *Database) Tables() []string {
	as := db.accessors()
	tables := make([]string, len(as))
	for i, a := range as {
		tables[i] = a.Table()
	}
	return tables
}

// ID returns the session id of the database.
func (db *Database) ID() uuid.UUID {
	return db.id
}

// Driver returns the underlying driver.
func (db *Database) Driver() dialect.Driver {
	return db.drv
}

// Logger returns the logger of the database.
func (db *Database) Logger() *slog.Logger {
	return db.log
}

// Close finalizes the statements of every access object and closes the
// connection. Buffered records that were not flushed are dropped. Closing
// a closed Database returns ErrClosed.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return ErrClosed
	}
	db.closed = true
	as := db.order
	db.mu.Unlock()

	errs := make([]error, 0, len(as)+1)
	for _, a := range as {
		errs = append(errs, a.close())
	}
	errs = append(errs, db.drv.Close())
	err := NewAggregateError(errs...)
	if err != nil {
		db.log.Error("database close failed", "error", err)
	} else {
		db.log.Info("database closed")
	}
	for _, c := range db.closers {
		if cerr := c.Close(); cerr != nil {
			err = NewAggregateError(err, cerr)
		}
	}
	return err
}

func (db *Database) accessors() []accessor {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]accessor(nil), db.order...)
}
