package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/tasks-api/internal/store"
	"gorm.io/gorm"
)

// MapError maps a GORM error to the corresponding store error.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint failure.
// Without TranslateError the driver error only carries the SQLite message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
