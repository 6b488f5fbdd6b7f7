package utils

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// Error kinds surfaced by the lifecycle core. Callers wrap these with
// fmt.Errorf("%w: detail", ...) so errors.Is keeps working; the HTTP layer
// maps each kind to a status code.
var (
	ErrorInvalidTransition       = errors.New("invalid-transition")
	ErrorConcurrentModification  = errors.New("concurrent-modification")
	ErrorUnknownEntity           = errors.New("unknown-entity")
	ErrorConstraintViolation     = errors.New("constraint-violation")
	ErrorInUseBlocksInactivation = errors.New("in-use-blocks-inactivation")
	ErrorHasHistory              = errors.New("has-history")
	ErrorDoubleClose             = errors.New("double-close")
	ErrorDuplicate               = errors.New("duplicate")
	ErrorCatalogInUse            = errors.New("in-use")
	ErrorExternalTimeout         = errors.New("external-timeout")
	ErrorExternalError           = errors.New("external-error")
)

// IsDuplicateKeyErr reports a MySQL 1062 unique constraint violation. Create
// paths pre-check uniqueness, but two concurrent inserts can both pass the
// check; the constraint is the real fence.
func IsDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
