package app

import (
	"errors"
	"net/http"

	"tracker/internal/export"
	"tracker/internal/initiative"
)

// DomainError carries the HTTP status to report alongside its message.
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func domainError(status int, message string) *DomainError {
	return &DomainError{Status: status, Message: message}
}

// mapError picks the status for routes without a fixed failure status.
func mapError(err error) (status int, message string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Message
	}
	switch {
	case errors.Is(err, initiative.ErrInvalidArgument), errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, initiative.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, initiative.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrDOCXDependencyMissing):
		return http.StatusNotImplemented, err.Error()
	}
	return http.StatusInternalServerError, "Server error"
}
