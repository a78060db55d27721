// Package errors maps service failures to categories the HTTP layer can render.
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError marks a successful outcome.
	CategoryNoError Category = iota
	// CategoryDataError The client sent invalid data: a malformed id, amount or stream name.
	CategoryDataError
	// CategoryUnauthorized The request carries no valid bearer token
	CategoryUnauthorized
	// CategoryForbidden The token is valid but may not access the resource
	CategoryForbidden
	// CategoryResourceNotFound The entity has no cached data or the route is unknown
	CategoryResourceNotFound
	// CategoryNotSupported The feature is disabled in this deployment
	CategoryNotSupported
	// CategoryDependencyFailure The revenue gateway or the database failed
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
	// CategoryRecovering The service is shutting down or restarting
	CategoryRecovering
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryNotSupported:
		return "CategoryNotSupported"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryRecovering:
		return "CategoryRecovering"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError carries the category, the message shown to the client and
// the underlying error that is only logged.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Category == cat
}

// IsInternalError reports whether err is a server side failure. Errors that are
// not ServiceErrors count as internal.
func IsInternalError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Category >= CategoryDependencyFailure
	}
	return true
}

func newError(cat Category, err error, message, fallback string) error {
	if err == nil {
		err = errors.New(fallback + message)
	}
	return &ServiceError{Category: cat, Message: message, Err: err}
}

// GeneralError returns a general service error.
// The client sees "Internal Server Error"; err is logged.
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, message, "resource not found: ")
}

// BadRequestError returns an error with category DataError
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, message, "bad request: ")
}

// NotSupportedError returns an error with category NotSupported
func NotSupportedError(err error, message string) error {
	return newError(CategoryNotSupported, err, message, "not supported: ")
}

// ForbiddenError returns an error with category Forbidden
func ForbiddenError(err error, message string) error {
	return newError(CategoryForbidden, err, message, "forbidden: ")
}

// UnAuthorizedError returns an error with category Unauthorized
func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, message, "unauthorized: ")
}

// DependencyFailureError returns an error with category DependencyFailure
func DependencyFailureError(err error, message string) error {
	return newError(CategoryDependencyFailure, err, message, "dependency failure: ")
}

// RecoveringError returns an error with category Recovering
func RecoveringError(err error, message string) error {
	return newError(CategoryRecovering, err, message, "unavailable: ")
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryNotSupported:
		return http.StatusNotImplemented
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryRecovering:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
