// Package field provides the scalar field builders of litedao record types.
//
// Every builder takes the field name and a typed accessor returning a
// pointer to the struct member. The accessor is called on the data path
// instead of reflection:
//
//	field.ID(func(w *Widget) *uint32 { return &w.ID })
//	field.String("name", func(w *Widget) *string { return &w.Name })
//	field.Int("count", func(w *Widget) *int16 { return &w.Count })
//	field.Bool("active", func(w *Widget) *bool { return &w.Active })
//	field.Float("price", func(w *Widget) *float32 { return &w.Price })
//	field.Bytes("thumbnail", func(w *Widget) *[]byte { return &w.Thumbnail })
//	field.MsgPack("attrs", func(w *Widget) *map[string]string { return &w.Attrs })
//
// # Column types
//
//	Int, Bool  INTEGER  (read back as int64 and narrowed)
//	Float      FLOAT    (read back as float64 and narrowed)
//	String     TEXT
//	Bytes      BLOB
//	MsgPack    BLOB     (msgpack encoding of the value)
//
// Named types are accepted through the type constraints, for example a
// `type Status string` member can be declared with field.String.
//
// Relations to other records are built with the edge package.
package field
