package utils

import (
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !IsDuplicateKeyErr(dup) {
		t.Error("1062 must be reported as a duplicate key")
	}
	if !IsDuplicateKeyErr(fmt.Errorf("create: %w", dup)) {
		t.Error("wrapped 1062 must be reported as a duplicate key")
	}
	if IsDuplicateKeyErr(&mysqlDriver.MySQLError{Number: 1452}) {
		t.Error("other MySQL errors are not duplicates")
	}
	if IsDuplicateKeyErr(nil) {
		t.Error("nil is not a duplicate")
	}
}
