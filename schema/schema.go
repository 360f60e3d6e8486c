package schema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/syssam/litedao/schema/field"
)

// Field is implemented by the field and edge builders.
type Field interface {
	Descriptor() *field.Descriptor
}

// Record is implemented by every mapped type. Fields returns the fields of
// the type in declaration order, including the identifier.
//
//	type Widget struct {
//	    ID   uint32
//	    Name string
//	}
//
//	func (Widget) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.ID(func(w *Widget) *uint32 { return &w.ID }),
//	        field.String("name", func(w *Widget) *string { return &w.Name }),
//	    }
//	}
type Record interface {
	Fields() []Field
}

// Type describes a mapped record type.
type Type struct {
	// Name is the table name, the unqualified Go type name.
	Name string
	// GoType is the record type. It is the registry token of the type.
	GoType reflect.Type
	// ID is the identifier field.
	ID *field.Descriptor
	// Fields holds all fields in declaration order.
	Fields []*field.Descriptor

	newFn func() any
}

// New returns a pointer to a zero record of the type, boxed in an interface.
func (t *Type) New() any {
	return t.newFn()
}

// IDOf returns the identifier of the record pointed to by rec.
func (t *Type) IDOf(rec any) uint32 {
	n, _ := t.ID.Value(rec).(int64)
	return uint32(n)
}

// SetID sets the identifier of the record pointed to by rec.
func (t *Type) SetID(rec any, id uint32) {
	t.ID.Assign(rec, int64(id))
}

// Columns returns the fields stored in columns of the table, in order.
func (t *Type) Columns() []*field.Descriptor {
	cols := make([]*field.Descriptor, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.HasColumn() {
			cols = append(cols, f)
		}
	}
	return cols
}

// Repeated returns the repeated fields of the type, in order.
func (t *Type) Repeated() []*field.Descriptor {
	var fs []*field.Descriptor
	for _, f := range t.Fields {
		if f.Role == field.RoleRepeated {
			fs = append(fs, f)
		}
	}
	return fs
}

// JunctionTable returns the name of the junction table of a repeated field.
func (t *Type) JunctionTable(f *field.Descriptor) string {
	return t.Name + "_" + f.Ref.Table()
}

// TableName returns the table name of a Go type.
func TableName(rt reflect.Type) string {
	return rt.Name()
}

// types caches the descriptors of all loaded record types.
var types sync.Map // reflect.Type -> *Type

// Describe returns the descriptor of T, building and validating it on first use.
func Describe[T Record]() (*Type, error) {
	return Load(&field.Ref{
		Type: reflect.TypeFor[T](),
		New:  func() any { return new(T) },
	})
}

// Load returns the descriptor of the record type referenced by ref, building
// and validating it on first use. Descriptors of related types are not loaded.
func Load(ref *field.Ref) (*Type, error) {
	if ref == nil || ref.Type == nil || ref.New == nil {
		return nil, fmt.Errorf("schema: invalid type reference")
	}
	if t, ok := types.Load(ref.Type); ok {
		return t.(*Type), nil
	}
	t, err := build(ref)
	if err != nil {
		return nil, err
	}
	actual, _ := types.LoadOrStore(ref.Type, t)
	return actual.(*Type), nil
}

func build(ref *field.Ref) (*Type, error) {
	rec, ok := ref.New().(Record)
	if !ok {
		return nil, &ValidationError{
			Table:   TableName(ref.Type),
			Message: fmt.Sprintf("type %s does not implement schema.Record", ref.Type),
		}
	}
	t := &Type{
		Name:   TableName(ref.Type),
		GoType: ref.Type,
		newFn:  ref.New,
	}
	for _, f := range rec.Fields() {
		if f == nil {
			t.Fields = append(t.Fields, nil)
			continue
		}
		d := f.Descriptor()
		if d != nil && d.PrimaryKey && d.Name == field.IDName && t.ID == nil {
			t.ID = d
		}
		t.Fields = append(t.Fields, d)
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}
