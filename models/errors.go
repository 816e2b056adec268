package models

import (
	"errors"
	"fmt"
)

// ErrorKind buckets domain failures so the HTTP layer and the spreadsheet
// importers can report them uniformly.
type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "Validation"
	ErrorKindReference   ErrorKind = "Reference"
	ErrorKindDuplicate   ErrorKind = "Duplicate"
	ErrorKindConsistency ErrorKind = "Consistency"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewReferenceError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrorKindReference, Message: fmt.Sprintf(format, args...)}
}

func NewDuplicateError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrorKindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func NewConsistencyError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrorKindConsistency, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

var (
	ErrCategoryMismatch = &DomainError{
		Kind:    ErrorKindReference,
		Message: "level 2 category does not belong to the given level 1 category",
	}
	ErrCoefficientNotFound = &DomainError{
		Kind:    ErrorKindReference,
		Message: "no emission coefficient found for the category pair",
	}
)
