// Package schema describes mapped record types.
//
// A record type implements Record by listing its fields, built with the
// [field] and [edge] packages, in declaration order:
//
//	type Part struct {
//	    ID    uint32
//	    Price float64
//	}
//
//	func (Part) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.ID(func(p *Part) *uint32 { return &p.ID }),
//	        field.Float("price", func(p *Part) *float64 { return &p.Price }),
//	    }
//	}
//
//	type Widget struct {
//	    ID    uint32
//	    Name  string
//	    Main  Part                        // nested, eager
//	    Owner litedao.ForeignKey[Person]  // foreign key, lazy
//	    Parts []Part                      // repeated, junction table
//	}
//
//	func (Widget) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.ID(func(w *Widget) *uint32 { return &w.ID }),
//	        field.String("name", func(w *Widget) *string { return &w.Name }),
//	        edge.Nested("main", func(w *Widget) *Part { return &w.Main }),
//	        edge.ForeignKey("owner", func(w *Widget) *litedao.ForeignKey[Person] { return &w.Owner }),
//	        edge.Repeated("parts", func(w *Widget) *[]Part { return &w.Parts }),
//	    }
//	}
//
// Fields is called once per type. The resulting Type is validated and
// cached for the lifetime of the process; see Describe and Load.
//
// # Tables
//
// The table of a type is named after the unqualified Go type name. Scalar
// fields map to columns of the same name, nested and foreign-key fields to
// "{name}_id" columns, and repeated fields to a junction table named
// "{Owner}_{Child}".
package schema
