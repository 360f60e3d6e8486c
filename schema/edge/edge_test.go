package edge_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/syssam/litedao"
	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/edge"
	"github.com/syssam/litedao/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Vertex struct {
	ID uint32
	X  float64
}

func (Vertex) Fields() []schema.Field {
	return []schema.Field{
		field.ID(func(v *Vertex) *uint32 { return &v.ID }),
		field.Float("x", func(v *Vertex) *float64 { return &v.X }),
	}
}

type RigidBody struct {
	ID       uint32
	Position Vertex
	Center   litedao.ForeignKey[Vertex]
	Hull     []Vertex
}

func TestNested(t *testing.T) {
	fd := edge.Nested("position", func(b *RigidBody) *Vertex { return &b.Position }).Descriptor()
	assert.Equal(t, field.RoleNested, fd.Role)
	assert.Equal(t, "position_id", fd.Column())
	assert.Equal(t, field.TypeInt, fd.Info.Type)
	assert.Equal(t, reflect.TypeFor[RigidBody](), fd.Owner)
	require.NotNil(t, fd.Ref)
	assert.Equal(t, "Vertex", fd.Ref.Table())
	assert.IsType(t, &Vertex{}, fd.Ref.New())

	b := &RigidBody{}
	fd.Assign(b, &Vertex{ID: 1, X: 2})
	assert.Equal(t, Vertex{ID: 1, X: 2}, b.Position)
	fd.Assign(b, Vertex{ID: 9})
	assert.Equal(t, uint32(1), b.Position.ID, "values are passed by pointer")
}

func TestForeignKey(t *testing.T) {
	fd := edge.ForeignKey("center", func(b *RigidBody) *litedao.ForeignKey[Vertex] { return &b.Center }).Descriptor()
	assert.Equal(t, field.RoleForeignKey, fd.Role)
	assert.Equal(t, "center_id", fd.Column())
	assert.Equal(t, field.TypeInt, fd.Info.Type)
	assert.Equal(t, "Vertex", fd.Ref.Table())

	b := &RigidBody{}
	assert.Equal(t, int64(0), fd.Value(b))
	fd.Assign(b, int64(42))
	assert.Equal(t, uint32(42), b.Center.ID)
	assert.True(t, b.Center.IsSet())
}

func TestRepeated(t *testing.T) {
	fd := edge.Repeated("hull", func(b *RigidBody) *[]Vertex { return &b.Hull }).Descriptor()
	assert.Equal(t, field.RoleRepeated, fd.Role)
	assert.Empty(t, fd.Column())
	assert.False(t, fd.HasColumn())
	assert.Nil(t, fd.Info)

	b := &RigidBody{}
	assert.Empty(t, fd.Elems(b))
	fd.Append(b, &Vertex{ID: 1})
	fd.Append(b, &Vertex{ID: 2})
	assert.Equal(t, []Vertex{{ID: 1}, {ID: 2}}, b.Hull)

	elems := fd.Elems(b)
	require.Len(t, elems, 2)
	elems[1].(*Vertex).ID = 5
	assert.Equal(t, uint32(5), b.Hull[1].ID)
}

func TestNilAccessors(t *testing.T) {
	for _, b := range []schema.Field{
		edge.Nested[RigidBody, Vertex]("position", nil),
		edge.ForeignKey[RigidBody, Vertex]("center", nil),
		edge.Repeated[RigidBody, Vertex]("hull", nil),
	} {
		fd := b.Descriptor()
		assert.True(t, errors.Is(fd.Err, field.ErrNilAccessor), fd.Name)
	}
}

func TestBind(t *testing.T) {
	fd := edge.Nested("position", func(b *RigidBody) *Vertex { return &b.Position }).Descriptor()
	assert.Nil(t, fd.Ref.Bind("not a registry"))

	db, err := litedao.Open(":memory:", true)
	require.NoError(t, err)
	defer db.Close()
	dao, ok := fd.Ref.Bind(db).(*litedao.DAO[Vertex])
	require.True(t, ok)
	assert.Same(t, litedao.For[Vertex](db), dao)
}
