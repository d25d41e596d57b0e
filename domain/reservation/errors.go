package reservation

import (
	"errors"
	"fmt"
)

// Validation error kinds. Any of these aborts the whole run during the
// calculate phase; the pipeline never makes partial progress past a
// malformed row.
var (
	ErrMissingColumn        = errors.New("missing column")
	ErrInvalidScopeType     = errors.New("invalid appliedScopeType")
	ErrInvalidResourceType  = errors.New("invalid reservedResourceType")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
)

// ErrNoOrderID marks a 2xx calculate response that carried no
// properties.reservationOrderId. Nothing downstream can proceed without the
// order id, so this is always fatal.
var ErrNoOrderID = errors.New("no reservation order id returned")

// ValidationError is a row-level input error raised while building a
// RequestRecord.
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d, column %q: %v (got %q)", e.Row, e.Column, e.Err, e.Value)
	}
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CalculationError wraps a pricing failure with the row it belongs to.
type CalculationError struct {
	Row int
	SKU string
	Err error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculate reservation for row %d (%s): %v", e.Row, e.SKU, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }
