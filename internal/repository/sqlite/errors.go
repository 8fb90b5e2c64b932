package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraint classifies a driver error by the kind of constraint it violated.
type constraint int

const (
	constraintNone constraint = iota
	constraintUnique
	constraintForeignKey
)

// violated inspects err for a SQLite constraint failure. It returns the kind
// and the driver message, which names the offending columns
// (e.g. "UNIQUE constraint failed: users.email").
func violated(err error) (constraint, string) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return constraintNone, ""
	}

	msg := se.Error()
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return constraintUnique, msg
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return constraintForeignKey, msg
	}

	// Without extended result codes only the primary code is reported.
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY"):
			return constraintUnique, msg
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return constraintForeignKey, msg
		}
	}
	return constraintNone, msg
}
