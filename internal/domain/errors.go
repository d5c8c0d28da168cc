package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("empty cart")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
)

// ErrCartChanged means the cart lines a checkout read were taken by another
// checkout before this one could clear them.
var ErrCartChanged = fmt.Errorf("%w: cart changed during checkout", ErrConflict)

// FieldError is a validation failure tied to one input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func Required(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// StockError reports a quantity that exceeds what the ledger holds.
// Kind is ErrOutOfStock or ErrInsufficientStock.
type StockError struct {
	Kind       error
	CartItemID uuid.UUID
	VariantID  uuid.UUID
	Size       string
	Requested  int
	Available  int
}

func (e *StockError) Error() string {
	size := e.Size
	if size == "" {
		size = "default"
	}
	if e.Available <= 0 {
		return fmt.Sprintf("size %s is sold out", size)
	}
	return fmt.Sprintf("only %d left in size %s", e.Available, size)
}

func (e *StockError) Unwrap() error { return e.Kind }

func OutOfStock(variantID uuid.UUID, size string, requested, available int) error {
	return &StockError{Kind: ErrOutOfStock, VariantID: variantID, Size: size, Requested: requested, Available: available}
}

func InsufficientStock(variantID uuid.UUID, size string, requested, available int) error {
	return &StockError{Kind: ErrInsufficientStock, VariantID: variantID, Size: size, Requested: requested, Available: available}
}
