// Package storage persists fetched datasets so repeat lookups skip the
// backend job queue.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hntax/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrEmptySlice  = errors.New("slice cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKey checks both halves of a cache key.
func validateKey(address model.Address, year model.TaxYear) error {
	if err := address.Validate(); err != nil {
		return err
	}
	return year.Validate()
}

// validateDataSet rejects empty datasets, which are never a finished result.
func validateDataSet(data model.DataSet) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: data", ErrEmptySlice)
	}
	return nil
}
