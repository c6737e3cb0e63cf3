// Package apperr holds the error taxonomy shared by every file storage operation.
// Callers classify with errors.Is; only ErrInternal is worth retrying.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// ValidationError reports malformed input field by field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type internalError struct {
	cause error
}

func (e *internalError) Error() string { return "internal error: " + e.cause.Error() }

func (e *internalError) Is(target error) bool { return target == ErrInternal }

func (e *internalError) Unwrap() error { return e.cause }

// Internal marks a storage or transaction failure. A nil err stays nil, and
// errors that already belong to the taxonomy are returned unchanged.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &internalError{cause: err}
}

// Internalf is Internal over fmt.Errorf.
func Internalf(format string, args ...any) error {
	return Internal(fmt.Errorf(format, args...))
}

// Classified reports whether err already carries one of the taxonomy sentinels.
func Classified(err error) bool {
	for _, s := range []error{
		ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrValidation,
		ErrQuotaExceeded, ErrPayloadTooLarge, ErrConflict, ErrInternal,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

func Retryable(err error) bool { return errors.Is(err, ErrInternal) }
