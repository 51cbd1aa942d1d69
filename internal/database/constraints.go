// FilePath: internal/database/constraints.go
package database

import (
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintKind classifies a store-level integrity violation.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
)

// Violation describes a constraint failure reported by either driver.
// Detail carries the constraint name (postgres) or the engine message
// (sqlite) so callers can tell which column collided.
type Violation struct {
	Kind   ConstraintKind
	Detail string
}

// Mentions reports whether the violation detail names s.
func (v Violation) Mentions(s string) bool {
	return strings.Contains(strings.ToLower(v.Detail), strings.ToLower(s))
}

// ClassifyError inspects err for a driver constraint failure.
func ClassifyError(err error) Violation {
	if err == nil {
		return Violation{}
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		detail := pqErr.Constraint + " " + pqErr.Detail
		switch pqErr.Code {
		case "23505":
			return Violation{Kind: ConstraintUnique, Detail: detail}
		case "23503":
			return Violation{Kind: ConstraintForeignKey, Detail: detail}
		case "23514":
			return Violation{Kind: ConstraintCheck, Detail: detail}
		}
		return Violation{}
	}

	var sqErr *sqlite.Error
	if stderrors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return Violation{Kind: ConstraintUnique, Detail: sqErr.Error()}
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return Violation{Kind: ConstraintForeignKey, Detail: sqErr.Error()}
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return Violation{Kind: ConstraintCheck, Detail: sqErr.Error()}
		}
	}

	return Violation{}
}
