// Package litedao maps Go record types to tables of an embedded SQLite
// database.
//
// A record type describes its fields once, with the builders of the
// schema/field and schema/edge packages. Its table, statements and
// marshaling are derived from that description:
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
//	    ID     uint32
//	    Name   string
//	    Main   Part
//	    Spares []Part
//	    Maker  litedao.ForeignKey[Maker]
//	}
//
//	func (Widget) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.ID(func(w *Widget) *uint32 { return &w.ID }),
//	        field.String("name", func(w *Widget) *string { return &w.Name }),
//	        edge.Nested("main", func(w *Widget) *Part { return &w.Main }),
//	        edge.Repeated("spares", func(w *Widget) *[]Part { return &w.Spares }),
//	        edge.ForeignKey("maker", func(w *Widget) *litedao.ForeignKey[Maker] { return &w.Maker }),
//	    }
//	}
//
// # Access objects
//
// A Database owns the connection and one access object per record type,
// created on first use by For:
//
//	db, err := litedao.Open("app.db", true)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	widgets := litedao.For[Widget](db)
//	w := Widget{Name: "Widget", Main: Part{Price: 9.99}}
//	widgets.Insert(ctx, &w)         // inserts w.Main first, assigns w.ID
//	got, ok := widgets.SelectByID(ctx, w.ID)
//
// Identifiers are issued by the access object. A record with a zero ID is
// assigned the next one; a record whose ID was set by the caller is only
// accepted above the last issued identifier.
//
// # Buffered writes
//
// Producers may run concurrently with AddToBuffer; a single goroutine
// writes the buffered records with Flush. The flush runs its statements
// without holding the buffer lock:
//
//	for _, w := range batch {
//	    widgets.AddToBuffer(w) // any goroutine
//	}
//	widgets.Flush(ctx)         // writer goroutine
//
// # Errors
//
// Opening a database returns an error. The operations of an access object
// report failure with their boolean result and log the cause. An access
// object whose table or statements could not be created is not
// initialized: every operation fails fast, and Err returns the cause.
package litedao
