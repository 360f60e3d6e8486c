// Package edge provides the builders of fields that relate one record type
// to another.
//
// # Edge kinds
//
//   - Nested: the related record is part of its owner. It is inserted
//     before the owner and loaded with it.
//   - ForeignKey: the owner stores the identifier of the related record
//     only. The record is loaded on demand with litedao.ForeignKey.Resolve.
//   - Repeated: the owner holds a collection of related records, stored in
//     a junction table.
//
//	type RigidBody struct {
//	    ID       uint32
//	    Position Vertex
//	    Center   litedao.ForeignKey[Vertex]
//	    Hull     []Vertex
//	}
//
//	func (RigidBody) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.ID(func(b *RigidBody) *uint32 { return &b.ID }),
//	        edge.Nested("position", func(b *RigidBody) *Vertex { return &b.Position }),
//	        edge.ForeignKey("center", func(b *RigidBody) *litedao.ForeignKey[Vertex] { return &b.Center }),
//	        edge.Repeated("hull", func(b *RigidBody) *[]Vertex { return &b.Hull }),
//	    }
//	}
//
// # Storage
//
// Nested and foreign-key edges are stored in a "{name}_id" INTEGER column
// with a FOREIGN KEY constraint on the related table. A repeated edge has
// no column; its elements are linked through the junction table
// "{Owner}_{Child}" with the columns "{Owner}_id" and "{Child}_id":
//
//	CREATE TABLE IF NOT EXISTS RigidBody_Vertex (RigidBody_id INTEGER, Vertex_id INTEGER)
//
// A type may declare one repeated edge per related type, and none of its
// own type, since both junction columns would have the same name. A Go
// struct cannot contain itself by value, so nested edges never form a
// cycle.
package edge
