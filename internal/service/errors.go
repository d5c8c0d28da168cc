package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
)

// notFound maps a missing row to domain.ErrNotFound and passes other errors
// through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return err
}

func conflict(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	}
	return err
}

func isStockErr(err error) bool {
	return errors.Is(err, domain.ErrOutOfStock) || errors.Is(err, domain.ErrInsufficientStock)
}
