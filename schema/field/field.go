package field

import (
	"errors"
	"fmt"
	"reflect"
)

// Type is the storage class of a column.
type Type uint8

// Column storage classes.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBytes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeBytes:   "bytes",
}

// String returns the name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// SQL returns the SQL column type used in CREATE TABLE statements.
func (t Type) SQL() string {
	switch t {
	case TypeInt:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "TEXT"
	default:
		return "BLOB"
	}
}

// Valid reports if the type is a known storage class.
func (t Type) Valid() bool {
	return t > TypeInvalid && t <= TypeBytes
}

// Role classifies how a field is stored relative to its owner row.
type Role uint8

// Field roles. They are mutually exclusive.
const (
	RoleScalar Role = iota
	RoleNested
	RoleForeignKey
	RoleRepeated
)

// String returns the name of the role.
func (r Role) String() string {
	switch r {
	case RoleScalar:
		return "scalar"
	case RoleNested:
		return "nested"
	case RoleForeignKey:
		return "foreign-key"
	case RoleRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("role(%d)", r)
	}
}

// TypeInfo holds the column information of a field.
type TypeInfo struct {
	Type  Type
	Ident string // Go type of the struct member, e.g. "int32".
}

// Ref identifies the record type on the other side of a relation.
type Ref struct {
	// Type is the Go type of the related record. It is also its registry token.
	Type reflect.Type
	// New returns a pointer to a zero value of the related record.
	New func() any
	// Bind returns the access object of the related type on the given
	// registry. It is set by the edge builders.
	Bind func(registry any) any
}

// Table returns the table name of the related record type.
func (r *Ref) Table() string {
	if r == nil || r.Type == nil {
		return ""
	}
	return r.Type.Name()
}

// Descriptor describes one field of a record type. Accessors receive the
// record as a pointer (*T) boxed in an interface.
//
//   - Scalar: Value returns the driver value (int64, float64, string or
//     []byte), or an error when the value cannot be encoded; Assign
//     receives the scanned value of the same kind.
//   - Foreign-Key: Value returns the referenced id as int64; Assign sets it.
//   - Nested: Value returns a pointer to the nested record; Assign copies
//     a loaded record (a pointer) into the field.
//   - Repeated: Elems returns pointers to the collection elements; Append
//     adds a loaded record (a pointer) to the collection.
type Descriptor struct {
	Name       string
	Info       *TypeInfo
	Role       Role
	PrimaryKey bool
	Owner      reflect.Type
	Ref        *Ref
	Value      func(rec any) any
	Assign     func(rec any, v any)
	Elems      func(rec any) []any
	Append     func(rec any, elem any)
	Err        error
}

// Column returns the column name of the field in its owner table. Repeated
// fields do not own a column and return an empty string.
func (d *Descriptor) Column() string {
	switch d.Role {
	case RoleNested, RoleForeignKey:
		return d.Name + "_id"
	case RoleRepeated:
		return ""
	default:
		return d.Name
	}
}

// HasColumn reports if the field is stored in a column of its owner table.
func (d *Descriptor) HasColumn() bool {
	return d.Role != RoleRepeated
}

// IDName is the name of the mandatory identifier field.
const IDName = "id"

// Integer is the set of Go integer kinds accepted by Int.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Floating is the set of Go floating point kinds accepted by Float.
type Floating interface {
	~float32 | ~float64
}

// ErrNilAccessor is recorded on descriptors built with a nil accessor.
var ErrNilAccessor = errors.New("nil accessor")

// Builder is returned by the field constructors of this package.
type Builder struct {
	desc *Descriptor
}

// Descriptor implements the schema.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Record returns a pointer to the record boxed in rec, or nil when rec holds
// another type.
func Record[T any](rec any) *T {
	p, _ := rec.(*T)
	return p
}

// NewBuilder returns a builder for the given descriptor. It is used by packages
// that define their own field kinds, such as edge.
func NewBuilder(desc *Descriptor) *Builder {
	return &Builder{desc: desc}
}

// ID returns the identifier field of a record. Every record type declares
// exactly one.
//
//	field.ID(func(w *Widget) *uint32 { return &w.ID })
func ID[T any](ptr func(*T) *uint32) *Builder {
	b := scalar[T, uint32](IDName, TypeInt, ptr,
		func(v uint32) any { return int64(v) },
		func(p *uint32, v any) {
			if n, ok := v.(int64); ok {
				*p = uint32(n)
			}
		},
	)
	b.desc.PrimaryKey = true
	return b
}

// Int returns an integer field stored as INTEGER. Values are read back as
// 64-bit integers and narrowed to the width of V.
func Int[T any, V Integer](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeInt, ptr,
		func(v V) any { return int64(v) },
		func(p *V, v any) {
			if n, ok := v.(int64); ok {
				*p = V(n)
			}
		},
	)
}

// Bool returns a boolean field stored as an INTEGER holding 0 or 1.
func Bool[T any, V ~bool](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeInt, ptr,
		func(v V) any {
			if v {
				return int64(1)
			}
			return int64(0)
		},
		func(p *V, v any) {
			if n, ok := v.(int64); ok {
				*p = V(n != 0)
			}
		},
	)
}

// Float returns a floating point field stored as FLOAT.
func Float[T any, V Floating](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeFloat, ptr,
		func(v V) any { return float64(v) },
		func(p *V, v any) {
			if f, ok := v.(float64); ok {
				*p = V(f)
			}
		},
	)
}

// String returns a text field stored as TEXT. A NULL column leaves the
// field at its zero value.
func String[T any, V ~string](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeString, ptr,
		func(v V) any { return string(v) },
		func(p *V, v any) {
			if s, ok := v.(string); ok {
				*p = V(s)
			}
		},
	)
}

// Bytes returns a binary field stored as BLOB. NULL and empty columns leave
// the field at its zero value.
func Bytes[T any, V ~[]byte](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeBytes, ptr,
		func(v V) any { return []byte(v) },
		func(p *V, v any) {
			if b, ok := v.([]byte); ok && len(b) > 0 {
				*p = V(append([]byte(nil), b...))
			}
		},
	)
}

func scalar[T, V any](name string, typ Type, ptr func(*T) *V, value func(V) any, assign func(*V, any)) *Builder {
	desc := &Descriptor{
		Name:  name,
		Info:  &TypeInfo{Type: typ, Ident: reflect.TypeFor[V]().String()},
		Role:  RoleScalar,
		Owner: reflect.TypeFor[T](),
	}
	if ptr == nil {
		desc.Err = fmt.Errorf("field %q: %w", name, ErrNilAccessor)
		return &Builder{desc: desc}
	}
	desc.Value = func(rec any) any {
		r := Record[T](rec)
		if r == nil {
			return nil
		}
		return value(*ptr(r))
	}
	desc.Assign = func(rec any, v any) {
		if r := Record[T](rec); r != nil {
			assign(ptr(r), v)
		}
	}
	return &Builder{desc: desc}
}
