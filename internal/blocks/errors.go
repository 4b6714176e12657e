package blocks

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("content validation failed")

// FieldError is a single failure at a dotted path inside a stream.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Path + ": " + e.Message
}

// ValidationError reports every problem found in a stream.
type ValidationError struct {
	Stream string       `json:"stream"`
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("%s: %s", e.Stream, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Merge appends the failures of other.
func (e *ValidationError) Merge(other *ValidationError) {
	if other != nil {
		e.Errors = append(e.Errors, other.Errors...)
	}
}
