package persistence

import (
	"errors"
	"strings"

	"github.com/finbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM translates postgres SQLSTATE 23505 into ErrDuplicatedKey; the
// string checks cover drivers used in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateSaveError maps storage errors to domain errors. Unique
// violations become CONFLICT so concurrent writers of the same number
// or period lose cleanly.
func translateSaveError(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return shared.NewConflictError(conflictMessage)
	}
	return err
}
