package edge

import (
	"fmt"
	"reflect"

	"github.com/syssam/litedao"
	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/field"
)

// Nested returns a field holding a related record by value. The related
// record is inserted before its owner and loaded eagerly with it. The owner
// table stores its identifier in the "{name}_id" column.
//
//	edge.Nested("position", func(b *RigidBody) *Vertex { return &b.Position })
func Nested[T any, C schema.Record](name string, ptr func(*T) *C) *field.Builder {
	desc := relation[T, C](name, field.RoleNested)
	if ptr == nil {
		desc.Err = fmt.Errorf("edge %q: %w", name, field.ErrNilAccessor)
		return field.NewBuilder(desc)
	}
	desc.Value = func(rec any) any {
		if r := field.Record[T](rec); r != nil {
			return ptr(r)
		}
		return nil
	}
	desc.Assign = func(rec any, v any) {
		r, c := field.Record[T](rec), field.Record[C](v)
		if r != nil && c != nil {
			*ptr(r) = *c
		}
	}
	return field.NewBuilder(desc)
}

// ForeignKey returns a field referencing a related record by identifier only.
// Inserting the owner never inserts the referenced record, and selecting the
// owner only reads the identifier; see litedao.ForeignKey.Resolve.
//
//	edge.ForeignKey("center", func(b *RigidBody) *litedao.ForeignKey[Vertex] { return &b.Center })
func ForeignKey[T any, C schema.Record](name string, ptr func(*T) *litedao.ForeignKey[C]) *field.Builder {
	desc := relation[T, C](name, field.RoleForeignKey)
	desc.Info = &field.TypeInfo{Type: field.TypeInt, Ident: reflect.TypeFor[litedao.ForeignKey[C]]().String()}
	if ptr == nil {
		desc.Err = fmt.Errorf("edge %q: %w", name, field.ErrNilAccessor)
		return field.NewBuilder(desc)
	}
	desc.Value = func(rec any) any {
		if r := field.Record[T](rec); r != nil {
			return int64(ptr(r).ID)
		}
		return nil
	}
	desc.Assign = func(rec any, v any) {
		r := field.Record[T](rec)
		n, ok := v.(int64)
		if r != nil && ok {
			*ptr(r) = litedao.NewForeignKey[C](uint32(n))
		}
	}
	return field.NewBuilder(desc)
}

// Repeated returns a field holding a collection of related records. The
// relation is stored in a junction table named "{Owner}_{Child}"; the owner
// table has no column for it. Elements are loaded in the order the junction
// table returns them.
//
//	edge.Repeated("tags", func(a *Article) *[]Tag { return &a.Tags })
func Repeated[T any, C schema.Record](name string, ptr func(*T) *[]C) *field.Builder {
	desc := relation[T, C](name, field.RoleRepeated)
	if ptr == nil {
		desc.Err = fmt.Errorf("edge %q: %w", name, field.ErrNilAccessor)
		return field.NewBuilder(desc)
	}
	desc.Elems = func(rec any) []any {
		r := field.Record[T](rec)
		if r == nil {
			return nil
		}
		s := *ptr(r)
		elems := make([]any, len(s))
		for i := range s {
			elems[i] = &s[i]
		}
		return elems
	}
	desc.Append = func(rec any, v any) {
		r, c := field.Record[T](rec), field.Record[C](v)
		if r != nil && c != nil {
			*ptr(r) = append(*ptr(r), *c)
		}
	}
	return field.NewBuilder(desc)
}

func relation[T any, C schema.Record](name string, role field.Role) *field.Descriptor {
	desc := &field.Descriptor{
		Name:  name,
		Role:  role,
		Owner: reflect.TypeFor[T](),
		Ref: &field.Ref{
			Type: reflect.TypeFor[C](),
			New:  func() any { return new(C) },
			Bind: func(registry any) any {
				db, ok := registry.(*litedao.Database)
				if !ok {
					return nil
				}
				return litedao.For[C](db)
			},
		},
	}
	if role == field.RoleNested {
		desc.Info = &field.TypeInfo{Type: field.TypeInt, Ident: reflect.TypeFor[C]().String()}
	}
	return desc
}
