// internal/errors/errors.go
package appErrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrCustomerNotFound describes a lookup that matched no customer row.
// The service layer reports absence with nil/false; the controller turns
// that into this error for the 404 body.
type ErrCustomerNotFound struct {
	CustomerID int64
}

func (e *ErrCustomerNotFound) Error() string {
	return fmt.Sprintf("Customer not found: no customer with ID %d", e.CustomerID)
}

// Helper constructor
func NewCustomerNotFound(id int64) error {
	return &ErrCustomerNotFound{CustomerID: id}
}

// IsConstraintViolation reports whether err came from the database rejecting
// a write on an integrity constraint (unique, not null, length, check).
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	// postgres: integrity class 23, plus 22001 for values longer than a VARCHAR column
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23" || pqErr.Code == "22001"
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
	}

	return false
}
