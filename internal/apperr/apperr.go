// Package apperr defines the error taxonomy shared by services and handlers.
//
// Every error carries a category and a stable kind. errors.Is matches on the
// pair, so the package-level sentinels match any error of the same kind even
// when it was built with a more specific message.
package apperr

import (
	"errors"
	"net/http"
)

type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryStore      Category = "store"
)

type Error struct {
	Category Category
	Kind     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Category == e.Category && t.Kind == e.Kind
}

// Code is the stable machine-readable identifier, e.g. "validation.bad_format".
func (e *Error) Code() string {
	return string(e.Category) + "." + e.Kind
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Category: e.Category, Kind: e.Kind, Message: msg, cause: e.cause}
}

// Auth errors.
var (
	ErrTokenMissing       = &Error{Category: CategoryAuth, Kind: "missing", Message: "authorization token required"}
	ErrTokenMalformed     = &Error{Category: CategoryAuth, Kind: "malformed", Message: "invalid token"}
	ErrTokenExpired       = &Error{Category: CategoryAuth, Kind: "expired", Message: "token expired"}
	ErrForbidden          = &Error{Category: CategoryAuth, Kind: "forbidden", Message: "insufficient role for this operation"}
	ErrInvalidCredentials = &Error{Category: CategoryAuth, Kind: "invalid_credentials", Message: "invalid username or password"}
)

// Validation errors.
var (
	ErrBadFormat           = &Error{Category: CategoryValidation, Kind: "bad_format", Message: "invalid input"}
	ErrDuplicateIdentifier = &Error{Category: CategoryValidation, Kind: "duplicate_identifier", Message: "a patient with this CPF already exists"}
	ErrDuplicateUsername   = &Error{Category: CategoryValidation, Kind: "duplicate_username", Message: "username already exists"}
	ErrDuplicateEmail      = &Error{Category: CategoryValidation, Kind: "duplicate_email", Message: "email already in use"}
	ErrAlreadyActive       = &Error{Category: CategoryValidation, Kind: "already_active", Message: "patient is already active"}
	ErrConflict            = &Error{Category: CategoryValidation, Kind: "conflict", Message: "resource already exists"}
)

// Not-found errors.
var (
	ErrPatientNotFound       = &Error{Category: CategoryNotFound, Kind: "patient", Message: "patient not found"}
	ErrProviderNotFound      = &Error{Category: CategoryNotFound, Kind: "provider", Message: "provider not found"}
	ErrAppointmentNotFound   = &Error{Category: CategoryNotFound, Kind: "appointment", Message: "appointment not found"}
	ErrUserNotFound          = &Error{Category: CategoryNotFound, Kind: "user", Message: "user not found"}
	ErrMedicalRecordNotFound = &Error{Category: CategoryNotFound, Kind: "medical_record", Message: "medical record not found"}
)

// ErrStore matches every error produced by Store.
var ErrStore = &Error{Category: CategoryStore, Kind: "failure", Message: "storage failure"}

func BadFormat(msg string) *Error {
	return ErrBadFormat.WithMessage(msg)
}

// Store wraps a persistence failure. The cause stays reachable through
// errors.Unwrap for logging but is never shown to clients.
func Store(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Category: CategoryStore, Kind: ErrStore.Kind, Message: ErrStore.Message, cause: err}
}

// As extracts an *Error from err. Unknown errors are reported as store failures.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Category: CategoryStore, Kind: ErrStore.Kind, Message: ErrStore.Message, cause: err}
}

// HTTPStatus maps an error to the transport status the presentation layer uses.
func HTTPStatus(err error) int {
	ae := As(err)
	switch ae.Category {
	case CategoryAuth:
		if ae.Kind == ErrForbidden.Kind {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case CategoryValidation:
		switch ae.Kind {
		case ErrDuplicateIdentifier.Kind, ErrDuplicateUsername.Kind, ErrDuplicateEmail.Kind, ErrConflict.Kind:
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
