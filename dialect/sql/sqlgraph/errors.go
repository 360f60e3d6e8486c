package sqlgraph

import (
	"errors"
	"strings"
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err) ||
		IsNotNullConstraintError(err)
}

// errorCoder is implemented by the errors of modernc.org/sqlite, which
// carry the extended result code of the failed call.
type errorCoder interface {
	Code() int
}

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraint           = 19
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index, or a reused primary key.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[errorCoder](err); ok {
		switch e.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}
	// Fallback to string matching for wrapped or mocked errors.
	return containsAny(err.Error(), "UNIQUE constraint failed", "PRIMARY KEY constraint failed")
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == sqliteConstraintForeignKey {
		return true
	}
	return containsAny(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == sqliteConstraintCheck {
		return true
	}
	return containsAny(err.Error(), "CHECK constraint failed")
}

// IsNotNullConstraintError reports if the error resulted from a NOT NULL constraint violation.
func IsNotNullConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == sqliteConstraintNotNull {
		return true
	}
	return containsAny(err.Error(), "NOT NULL constraint failed")
}

// constraintKind names the kind of constraint err violated, for log records.
// It returns an empty string for other errors, including a bare
// SQLITE_CONSTRAINT code.
func constraintKind(err error) string {
	switch {
	case IsUniqueConstraintError(err):
		return "unique"
	case IsForeignKeyConstraintError(err):
		return "foreign-key"
	case IsCheckConstraintError(err):
		return "check"
	case IsNotNullConstraintError(err):
		return "not-null"
	}
	if e, ok := asError[errorCoder](err); ok && e.Code()&0xff == sqliteConstraint {
		return "constraint"
	}
	return ""
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
