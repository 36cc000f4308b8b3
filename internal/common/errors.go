package common

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a class of catalog failure.
type ErrorKind string

const (
	KindDuplicateSKU       ErrorKind = "DUPLICATE_SKU"
	KindInvalidProductData ErrorKind = "INVALID_PRODUCT_DATA"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindAmbiguousSlot      ErrorKind = "AMBIGUOUS_SLOT_RESOLUTION"
	KindInternal           ErrorKind = "INTERNAL"
)

// AppError is a structured error with a kind, a client-safe message and optional field details.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

// Sentinels for errors.Is; they match any AppError of the same kind.
var (
	ErrDuplicateSKU       = &AppError{Kind: KindDuplicateSKU}
	ErrInvalidProductData = &AppError{Kind: KindInvalidProductData}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrAmbiguousSlot      = &AppError{Kind: KindAmbiguousSlot}
)

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func DuplicateSKU(sku string) *AppError {
	return &AppError{Kind: KindDuplicateSKU, Message: fmt.Sprintf("product SKU %q already exists", sku)}
}

func InvalidProductData(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindInvalidProductData, Message: message, Fields: fields}
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AmbiguousSlot(format string, args ...any) *AppError {
	return &AppError{Kind: KindAmbiguousSlot, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
