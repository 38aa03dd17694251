package repository

import (
	"errors"
	"fmt"

	"socialexplore/internal/domain"

	"gorm.io/gorm"
)

// wrap maps gorm.ErrRecordNotFound to domain.ErrNotFound and annotates
// anything else with op.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
