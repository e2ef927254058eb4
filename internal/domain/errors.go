package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers. Program errors below unwrap to one
// of these so transports can map them without knowing every code.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrArithmetic    = errors.New("arithmetic error")
	ErrFatal         = errors.New("fatal error")
)

// ProgramError is a named failure raised by a module. Code is stable and
// reported to callers so they can tell which precondition failed.
type ProgramError struct {
	Code     string
	Message  string
	category error
}

func (e *ProgramError) Error() string { return e.Message }

func (e *ProgramError) Unwrap() error { return e.category }

func newProgramError(code, message string, category error) *ProgramError {
	return &ProgramError{Code: code, Message: message, category: category}
}

// Validation failures.
var (
	ErrNameTooLong   = newProgramError("NameTooLong", "name must be between 1 and 32 bytes", ErrValidation)
	ErrInvalidRating = newProgramError("InvalidRating", "rating must be between 1 and 5", ErrValidation)
	ErrZeroTipAmount = newProgramError("ZeroTipAmount", "tip amount must be greater than zero", ErrValidation)
	ErrInvalidRole   = newProgramError("InvalidRole", "role must be reader (0) or writer (1)", ErrValidation)
)

// Authorization failures.
var (
	ErrUnauthorizedWriter = newProgramError("UnauthorizedWriter", "signer is not the author", ErrForbidden)
	ErrInvalidWriterRole  = newProgramError("InvalidWriterRole", "account does not have the writer role", ErrForbidden)
	ErrAuthorityMismatch  = newProgramError("AuthorityMismatch", "record is owned by another program", ErrForbidden)
	ErrMissingSignature   = newProgramError("MissingSignature", "required signature is missing", ErrForbidden)
	ErrInvalidDerivation  = newProgramError("InvalidDerivation", "address does not match its derivation", ErrForbidden)
	ErrNoOwnership        = newProgramError("NoOwnership", "presenter does not hold the asset", ErrForbidden)
	ErrWrongCollection    = newProgramError("WrongCollection", "asset belongs to a different collection", ErrForbidden)
	ErrContentInactive    = newProgramError("ContentInactive", "exclusive content is not active", ErrForbidden)
	ErrKindChanged        = newProgramError("KindChanged", "record kind cannot change after creation", ErrForbidden)
)

// Lookup failures that carry a program code.
var (
	ErrWriterAccountNotFound = newProgramError("WriterAccountNotFound", "writer account not found", ErrNotFound)
	ErrReaderAccountNotFound = newProgramError("ReaderAccountNotFound", "reader account not found", ErrNotFound)
)

// Arithmetic and ledger failures.
var (
	ErrChapterLimitExceeded = newProgramError("ChapterLimitExceeded", "book has reached the chapter limit", ErrArithmetic)
	ErrArithmeticOverflow   = newProgramError("ArithmeticOverflow", "counter overflow", ErrArithmetic)
	ErrInsufficientFunds    = newProgramError("InsufficientFunds", "insufficient funds", ErrValidation)
)

// Code returns the program code carried by err, or "" if there is none.
func Code(err error) string {
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
