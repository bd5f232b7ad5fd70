package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrCreateFailed is wrapped by every CreateProduct failure.
	ErrCreateFailed = errors.New("product creation failed")
	// ErrReadFailed is wrapped by every ListProducts failure.
	ErrReadFailed = errors.New("product read failed")
)

// ValidationError reports the submitted fields that were missing or malformed,
// keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
