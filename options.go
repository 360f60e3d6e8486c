package litedao

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// options holds the configuration of a Database.
type options struct {
	log     *slog.Logger
	id      uuid.UUID
	closers []io.Closer
}

// Option configures a Database.
type Option func(*options)

// WithLogger sets the logger of the database and of all its access objects.
// Records are enriched with the "db" session id and the "table" of the
// access object. Without a logger, nothing is logged.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithID sets the session id of the database, reported in the "db" attribute
// of every log record. A random id is used by default.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

// withCloser registers a resource released when the Database is closed.
func withCloser(c io.Closer) Option {
	return func(o *options) {
		o.closers = append(o.closers, c)
	}
}
