// Package dialect defines the storage interfaces used by the access objects.
//
// A Driver executes plain statements and compiles prepared statements. The
// access objects prepare every statement they use once, at initialization,
// and execute them many times:
//
//	stmt, err := drv.Prepare(ctx, "INSERT INTO Widget (id, name) VALUES (?, ?)")
//	if err != nil {
//	    return err
//	}
//	defer stmt.Close()
//	if err := stmt.Exec(ctx, 1, "Widget"); err != nil {
//	    return err
//	}
//
// The only dialect is SQLite, implemented by the dialect/sql package on top
// of database/sql and the pure Go engine from modernc.org/sqlite.
//
// Driver wrappers such as sql.StatsDriver and sql.DebugDriver implement the
// same interfaces, so they can be stacked in front of any Driver.
package dialect
