package faults

import (
	"errors"
	"fmt"
)

// Fault codes
const (
	// Storage errors
	CodeStorage = "STORAGE_FAULT"

	// Resource errors
	CodeNotFound = "NOT_FOUND"
	CodeConflict = "CONFLICT"

	// Input errors
	CodeValidation = "VALIDATION_FAULT"
	CodeImport     = "IMPORT_FAULT"
)

// Fault is the error type surfaced by repositories, state containers and the
// backup codec. Code classifies the failure, Message is human-readable, Err
// carries the underlying cause when one exists.
type Fault struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

// Unwrap exposes the underlying cause to errors.Is/As chains.
func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a Fault without an underlying cause.
func New(code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Wrap creates a Fault around an underlying error.
func Wrap(code, message string, err error) *Fault {
	return &Fault{Code: code, Message: message, Err: err}
}

// Predefined faults
var (
	ErrNotFound      = New(CodeNotFound, "record not found")
	ErrCategoryInUse = New(CodeConflict, "category in use")
)

// Storage wraps a failed store operation as a storage fault.
func Storage(op string, err error) *Fault {
	return Wrap(CodeStorage, fmt.Sprintf("storage operation %s failed", op), err)
}

// NotFound creates a not-found fault for one record.
func NotFound(entity, id string) *Fault {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// Conflict creates a business-rule conflict fault.
func Conflict(message string) *Fault {
	return New(CodeConflict, message)
}

// Validation creates a field-rule fault.
func Validation(message string) *Fault {
	return New(CodeValidation, message)
}

// Import creates a structural fault for a rejected backup document.
func Import(message string) *Fault {
	return New(CodeImport, message)
}

// KindOf returns the fault code of err, or CodeStorage when err is not a
// Fault (unknown failures are treated as storage-level).
func KindOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeStorage
}

// IsCode reports whether err is a Fault with the given code.
func IsCode(err error, code string) bool {
	var f *Fault
	return errors.As(err, &f) && f.Code == code
}
