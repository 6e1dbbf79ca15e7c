package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can react without string matching.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindSchema            Kind = "schema"
	KindPersistence       Kind = "persistence"
	KindExternalService   Kind = "external_service"
)

// Error is the typed failure returned by every domain operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels usable with errors.Is; they match any *Error of the same kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrSchema            = &Error{Kind: KindSchema}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrExternalService   = &Error{Kind: KindExternalService}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockf builds an InsufficientStockError.
func InsufficientStockf(format string, args ...any) error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// Schemaf builds a SchemaError.
func Schemaf(format string, args ...any) error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure.
func Persistence(message string, err error) error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// ExternalService wraps a failure of a remote collaborator.
func ExternalService(message string, err error) error {
	return &Error{Kind: KindExternalService, Message: message, Err: err}
}

// KindOf extracts the Kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
