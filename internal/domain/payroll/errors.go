package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrCompanyProfileNotFound = errors.New("company profile not found")
	ErrInvalidEmployee        = errors.New("invalid employee record")
	ErrInvalidAdvance         = errors.New("invalid advance record")
	ErrNegativeValue          = errors.New("negative value not allowed")
	ErrAmountOverflow         = errors.New("calculated amount out of range")
	ErrUnknownPolicy          = errors.New("unknown negative value policy")
)

// ValidationError identifies the input field that stopped a calculation.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
