package models

import (
	"errors"
	"strings"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNegativeStock   = errors.New("stock cannot be negative")
)

// ValidationError carries every violated product rule.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}
