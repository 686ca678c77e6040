// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// knowing which SQL driver is in use.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict is the kind wrapped by every ConflictError.
var ErrConflict = errors.New("conflict")

// ConflictError reports a unique constraint violation on a logical field
// such as "email" or "username".  Field is empty when the violated
// constraint could not be identified.
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrConflict)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrConflict, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// uniqueViolation reports whether err is a unique constraint violation and,
// when it is, returns the identifier of the violated constraint.  The
// duplicate value itself is never part of the returned string.
func uniqueViolation(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		// Duplicate entry '<value>' for key '<index>'
		msg := me.Message
		if i := strings.LastIndex(msg, " for key "); i >= 0 {
			return strings.Trim(msg[i+len(" for key "):], "'` "), true
		}
		return "", true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")) {
			return sqliteConstraint(se.Error()), true
		}
	}
	return "", false
}

// sqliteConstraint extracts the column list from
// "UNIQUE constraint failed: accounts.email (2067)".
func sqliteConstraint(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	cols := msg[i+len(marker):]
	if j := strings.Index(cols, " ("); j >= 0 {
		cols = cols[:j]
	}
	return cols
}

// conflictField maps a constraint identifier to the first field whose
// constraint it names.  constraints pairs a logical field with the identifiers MySQL
// (index name) and SQLite (table.column) use for it.
func conflictField(ident string, constraints map[string][]string, order []string) string {
	for _, field := range order {
		for _, name := range constraints[field] {
			if ident != "" && strings.Contains(ident, name) {
				return field
			}
		}
	}
	return ""
}
