// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell a
// missing row from a constraint violation without inspecting driver
// errors itself.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrCoachNotFound = errors.New("coach not found")
	ErrCourtNotFound = errors.New("court not found")
	ErrTokenNotFound = errors.New("reset token not found")
	ErrEntryNotFound = errors.New("taxonomy entry not found")
	ErrEmailExists   = errors.New("email already exists")
)

// ErrInUse is returned when a delete is blocked because other rows still
// reference the target (courts used by bookings, sports used by courts).
var ErrInUse = errors.New("in use")

// ErrInvalidReference is returned when an insert names a parent row that
// does not exist (for example a sport id that is not in sports).
var ErrInvalidReference = errors.New("invalid reference")

// MySQL server error numbers.
const (
	mysqlDupEntry         = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
)

func mysqlNumber(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

// isDuplicate reports a unique-key violation.  Other drivers (the SQLite
// driver used in tests) are recognised by message.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if n, ok := mysqlNumber(err); ok {
		return n == mysqlDupEntry
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "1062")
}

// isForeignKey reports any foreign-key violation, on either side of the
// relationship.
func isForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if n, ok := mysqlNumber(err); ok {
		switch n {
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2:
			return true
		}
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
