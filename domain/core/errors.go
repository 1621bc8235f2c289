package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrTableNotFound  = fmt.Errorf("%w: table", ErrNotFound)

	ErrSchemaRead       = errors.New("schema read failed")
	ErrColumnNotNumeric = errors.New("column is not numeric")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyDataset     = errors.New("dataset has no rows")
	ErrUnsupportedFile  = errors.New("unsupported file format")

	ErrSourceClosed = errors.New("data source is closed")
)

// NewColumnError wraps an error with the column it occurred on
func NewColumnError(column string, err error) error {
	return fmt.Errorf("column %q: %w", column, err)
}

// IsNotFoundError reports whether err is any not-found variant
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataError reports whether err reflects a data shape problem rather
// than an infrastructure failure
func IsDataError(err error) bool {
	return errors.Is(err, ErrColumnNotNumeric) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrEmptyDataset)
}
