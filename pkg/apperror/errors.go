package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrIntegrityViolation covers duplicate unique fields and dangling foreign keys.
	ErrIntegrityViolation = errors.New("integrity violation")
	// ErrDataValidation covers values that exceed a declared column constraint.
	ErrDataValidation = errors.New("data validation failed")
	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Postgres SQLSTATE codes handled by FromDB.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"
)

// AppError is a custom error type that can hold an HTTP status code
// and a message that is safe to show to the user.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Integrity builds a user-facing integrity violation.
func Integrity(message string) *AppError {
	return New(http.StatusConflict, message, ErrIntegrityViolation)
}

// DataValidation builds a user-facing data validation failure.
func DataValidation(message string) *AppError {
	return New(http.StatusUnprocessableEntity, message, ErrDataValidation)
}

// FromDB translates storage errors into the error taxonomy above.
// Errors it does not recognise are returned unchanged.
func FromDB(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return New(http.StatusConflict, "", fmt.Errorf("%w: %w", ErrIntegrityViolation, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return New(http.StatusConflict, "", fmt.Errorf("%w: %w", ErrIntegrityViolation, err))
		case pgStringTooLong:
			return New(http.StatusUnprocessableEntity, "", fmt.Errorf("%w: %w", ErrDataValidation, err))
		}
	}

	return err
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrIntegrityViolation) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrDataValidation) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return http.StatusTooManyRequests
	}
	// Default to internal server error
	return http.StatusInternalServerError
}

// UserMessage returns text that can be flashed to the user for err.
// Internal errors collapse to a generic message.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, ErrIntegrityViolation):
		return "That record conflicts with existing data."
	case errors.Is(err, ErrDataValidation):
		return "Some of the submitted values are too long."
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return "Not found."
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return "Access unauthorized."
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return "Invalid input."
	case errors.Is(err, ErrRateLimitExceeded):
		return "You are doing that too fast."
	}
	return "Something went wrong. Please try again."
}
