package persistence

import (
	"errors"

	"github.com/ngo-pm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors onto domain errors. Anything else is
// returned unchanged.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainErrorWithCause("ALREADY_EXISTS", "Resource already exists", err)
	default:
		return err
	}
}
