// Package sql implements the dialect.Driver of litedao on top of
// database/sql and the pure Go SQLite engine from modernc.org/sqlite.
//
// # Opening
//
// Open takes a database path or URI and a write flag:
//
//	drv, err := sql.Open("app.db", true)   // read-write, created if missing
//	drv, err := sql.Open("app.db", false)  // read-only, must exist
//	drv, err := sql.Open(":memory:", true) // private in-memory database
//
// The pool holds exactly one connection, so every statement of a Driver
// runs on the same engine connection. OpenDB wraps an existing *sql.DB,
// which is how tests run against go-sqlmock.
//
// # Statements
//
// The statement text of a record type is derived from its schema.Type:
//
//	sql.CreateTable(t)        // CREATE TABLE IF NOT EXISTS Widget (..., PRIMARY KEY(id))
//	sql.CreateJunction(t, f)  // CREATE TABLE IF NOT EXISTS Widget_Part (Widget_id INTEGER, Part_id INTEGER)
//	sql.Insert(t)             // INSERT INTO Widget (id, name, part_id) VALUES (?, ?, ?)
//	sql.SelectAll(t)          // SELECT id, name, part_id FROM Widget
//	sql.SelectByID(t)         // SELECT id, name, part_id FROM Widget WHERE id = ?
//	sql.JunctionInsert(t, f)  // INSERT INTO Widget_Part(Widget_id, Part_id) VALUES (?, ?)
//	sql.JunctionSelect(t, f)  // SELECT Part_id FROM Widget_Part WHERE Widget_id = ?
//
// # Instrumentation
//
// StatsDriver counts statements, including executions of the prepared
// statements it returns, and reports slow ones. DebugDriver logs every
// statement. Both wrap any dialect.Driver:
//
//	drv := sql.NewStatsDriver(base, sql.WithSlowThreshold(50*time.Millisecond))
//	db := litedao.NewDatabase(drv)
//	fmt.Println(drv.QueryStats().Stats())
package sql
