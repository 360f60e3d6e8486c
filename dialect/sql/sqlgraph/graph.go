// Package sqlgraph binds records to prepared statements and back, walking
// nested records and repeated collections through the access objects of
// their types.
package sqlgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/dialect/sql"
	"github.com/syssam/litedao/logging"
	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/field"
)

// Accessor is the access object of one record type, as seen by the graph.
// Records are passed as pointers boxed in interfaces.
type Accessor interface {
	// Type returns the descriptor of the record type.
	Type() *schema.Type
	// InsertRecord assigns an identifier to rec if it has none and inserts it.
	InsertRecord(ctx context.Context, rec any) bool
	// SelectRecord loads the record with the given id.
	SelectRecord(ctx context.Context, id uint32) (any, bool)
	// Junction returns the junction statements of the repeated field f.
	Junction(f *field.Descriptor) *Junction
}

// Resolver returns the access object of a related record type, creating it
// on first use.
type Resolver interface {
	Accessor(ref *field.Ref) (Accessor, error)
}

// Junction holds the prepared statements of the junction table of one
// repeated field.
type Junction struct {
	Table string
	// Insert adds one (owner id, child id) row.
	Insert dialect.Stmt
	// Select reads the child ids of one owner id.
	Select dialect.Stmt
}

// Graph is the record marshaler shared by all access objects of a registry.
type Graph struct {
	Resolver Resolver
	Logger   *slog.Logger
}

func (g *Graph) logger(t *schema.Type) *slog.Logger {
	return logging.OrNop(g.Logger).With("table", t.Name)
}

// link is a junction row written after its owner row.
type link struct {
	junction *Junction
	child    uint32
}

// Insert binds the columns of rec to stmt and executes it. Nested records
// and the elements of repeated fields are inserted first through their own
// access objects; the junction rows of repeated fields are written once the
// owner row exists. The identifier of rec must already be assigned.
//
// A failed nested or element insert is logged and the walk continues with
// whatever identifier the child holds. A failed junction row is logged and
// the next row is attempted. Insert reports false only if rec itself was
// not written.
func (g *Graph) Insert(ctx context.Context, owner Accessor, stmt dialect.Stmt, rec any) bool {
	t := owner.Type()
	log := g.logger(t)
	id := t.IDOf(rec)
	var (
		args  = make([]any, 0, len(t.Fields))
		links []link
	)
	for _, f := range t.Fields {
		switch f.Role {
		case field.RoleScalar, field.RoleForeignKey:
			v := f.Value(rec)
			if err, ok := v.(error); ok {
				log.ErrorContext(ctx, "cannot encode field", "field", f.Name, "id", id, "error", err)
				return false
			}
			args = append(args, v)
		case field.RoleNested:
			child := f.Value(rec)
			acc, err := g.Resolver.Accessor(f.Ref)
			if err != nil {
				log.ErrorContext(ctx, "no access object for nested field", "field", f.Name, "error", err)
				return false
			}
			if !acc.InsertRecord(ctx, child) {
				log.WarnContext(ctx, "nested insert failed", "field", f.Name, "id", id)
			}
			args = append(args, int64(acc.Type().IDOf(child)))
		case field.RoleRepeated:
			acc, err := g.Resolver.Accessor(f.Ref)
			if err != nil {
				log.ErrorContext(ctx, "no access object for repeated field", "field", f.Name, "error", err)
				return false
			}
			j := owner.Junction(f)
			for _, elem := range f.Elems(rec) {
				if !acc.InsertRecord(ctx, elem) {
					log.WarnContext(ctx, "repeated element insert failed", "field", f.Name, "id", id)
				}
				if cid := acc.Type().IDOf(elem); cid != 0 && j != nil {
					links = append(links, link{junction: j, child: cid})
				}
			}
		}
	}
	if err := stmt.Exec(ctx, args...); err != nil {
		attrs := []any{"id", id, "error", err}
		if kind := constraintKind(err); kind != "" {
			attrs = append(attrs, "constraint", kind)
		}
		log.ErrorContext(ctx, "insert failed", attrs...)
		return false
	}
	for _, l := range links {
		if err := l.junction.Insert.Exec(ctx, int64(id), int64(l.child)); err != nil {
			log.ErrorContext(ctx, "junction insert failed", "junction", l.junction.Table, "id", id, "child", l.child, "error", err)
		}
	}
	return true
}

// Select executes stmt with args and returns the records of its rows, as
// pointers boxed in interfaces. Nested records and repeated fields are
// loaded after the cursor of stmt is closed, so the lookups never interleave
// with an open result set. A nested record that does not exist is
// represented by a zero record carrying only its identifier. Foreign keys
// are never loaded.
func (g *Graph) Select(ctx context.Context, owner Accessor, stmt dialect.Stmt, args ...any) []any {
	t := owner.Type()
	log := g.logger(t)
	recs, err := g.scan(ctx, t, stmt, args)
	if err != nil {
		log.ErrorContext(ctx, "select failed", "error", err)
		return nil
	}
	for _, rec := range recs {
		g.loadEdges(ctx, owner, log, rec)
	}
	return recs
}

func (g *Graph) scan(ctx context.Context, t *schema.Type, stmt dialect.Stmt, args []any) (recs []any, rerr error) {
	rows, err := stmt.Query(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	cols := t.Columns()
	for rows.Next() {
		dest := make([]any, len(cols))
		for i, f := range cols {
			dest[i] = scanDest(f)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		rec := t.New()
		for i, f := range cols {
			assign(f, rec, dest[i])
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// loadEdges loads the nested records and repeated collections of rec.
func (g *Graph) loadEdges(ctx context.Context, owner Accessor, log *slog.Logger, rec any) {
	t := owner.Type()
	id := t.IDOf(rec)
	for _, f := range t.Fields {
		if f.Role != field.RoleNested && f.Role != field.RoleRepeated {
			continue
		}
		acc, err := g.Resolver.Accessor(f.Ref)
		if err != nil {
			log.ErrorContext(ctx, "no access object for related field", "field", f.Name, "error", err)
			continue
		}
		if f.Role == field.RoleNested {
			g.loadNested(ctx, acc, f, rec)
			continue
		}
		j := owner.Junction(f)
		if j == nil {
			continue
		}
		ids, err := childIDs(ctx, j, id)
		if err != nil {
			log.ErrorContext(ctx, "junction select failed", "junction", j.Table, "id", id, "error", err)
			continue
		}
		for _, cid := range ids {
			if child, ok := acc.SelectRecord(ctx, cid); ok {
				f.Append(rec, child)
			}
		}
	}
}

func (g *Graph) loadNested(ctx context.Context, acc Accessor, f *field.Descriptor, rec any) {
	cur := f.Value(rec)
	cid := acc.Type().IDOf(cur)
	if cid == 0 {
		return
	}
	if child, ok := acc.SelectRecord(ctx, cid); ok {
		f.Assign(rec, child)
	}
}

func childIDs(ctx context.Context, j *Junction, id uint32) (ids []uint32, rerr error) {
	rows, err := j.Select.Query(ctx, int64(id))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	for rows.Next() {
		var n sql.NullInt64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		if n.Valid && n.Int64 > 0 {
			ids = append(ids, uint32(n.Int64))
		}
	}
	return ids, rows.Err()
}

func scanDest(f *field.Descriptor) any {
	if f.Role != field.RoleScalar {
		return new(sql.NullInt64)
	}
	switch f.Info.Type {
	case field.TypeInt:
		return new(sql.NullInt64)
	case field.TypeFloat:
		return new(sql.NullFloat64)
	case field.TypeString:
		return new(sql.NullString)
	default:
		return new([]byte)
	}
}

// assign stores a scanned column into rec. NULL columns leave the field at
// its zero value. A nested column only sets the identifier of the nested
// record; loadNested replaces it with the stored record.
func assign(f *field.Descriptor, rec any, v any) {
	switch v := v.(type) {
	case *sql.NullInt64:
		if !v.Valid {
			return
		}
		if f.Role == field.RoleNested {
			child := f.Ref.New()
			if t, err := schema.Load(f.Ref); err == nil {
				t.SetID(child, uint32(v.Int64))
				f.Assign(rec, child)
			}
			return
		}
		f.Assign(rec, v.Int64)
	case *sql.NullFloat64:
		if v.Valid {
			f.Assign(rec, v.Float64)
		}
	case *sql.NullString:
		if v.Valid {
			f.Assign(rec, v.String)
		}
	case *[]byte:
		if len(*v) > 0 {
			f.Assign(rec, *v)
		}
	}
}
