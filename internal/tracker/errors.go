package tracker

import (
	"errors"
	"fmt"

	"github.com/vinkenoogm/ks-bear/internal/database"
)

// Sentinel error kinds for this package. Callers match them with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrEventNotFound       = errors.New("event not found")
)

// storeError classifies a driver error. The driver error stays in the chain.
func storeError(op string, err error) error {
	if database.IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
