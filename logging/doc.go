// Package logging builds the structured loggers used by litedao.
//
// Every component of litedao holds an explicit *slog.Logger. There is no
// global logger: a component constructed without one uses Nop, which
// discards every record.
//
//	log, closer, err := logging.New(logging.Config{Level: logging.Trace})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	db, err := litedao.Open("app.db", true, litedao.WithLogger(log))
//
// LevelTrace sits below slog.LevelDebug and carries the text of every
// statement and the DDL of created tables.
package logging
