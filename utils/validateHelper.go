package utils

import (
	"context"
	"fmt"
	"reflect"

	"github.com/assetflow/assetflow_backend/config"
)

// check if id exists, return RecordNotFound error when it doesn't
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateUnique rejects with ErrorConstraintViolation when another row
// already holds the same value in column (exceptId = 0 for create).
func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: duplicate %s", ErrorConstraintViolation, column)
	}
	return nil
}

// ValidateUniqueName enforces catalog-name uniqueness: case-insensitive,
// trimmed. Rejects with ErrorDuplicate.
func ValidateUniqueName[T any](ctx context.Context, column string, name string, exceptId interface{}) error {
	normalized := NormalizeName(name)
	cond := "LOWER(TRIM(" + column + ")) = ?"
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, cond, normalized)
	} else {
		count, err = ResourceCountWhere[T](ctx, cond+" AND NOT id = ?", normalized, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s %q already exists", ErrorDuplicate, column, name)
	}
	return nil
}

// count records matching condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
