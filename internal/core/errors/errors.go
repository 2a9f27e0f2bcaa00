package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/rentops-lab/rentops/internal/core/booking"
)

const (
	HttpInternalError           = "internal_error"
	HttpInvalidJsonError        = "invalid_json"
	HttpInvalidIntervalError    = "invalid_interval"
	HttpInvalidArgumentError    = "invalid_argument"
	HttpUnitNotFoundError       = "unit_not_found"
	HttpNotOwnedError           = "not_owned"
	HttpUnavailableError        = "unavailable"
	HttpConcurrentConflictError = "concurrent_conflict"
	HttpDataFetchFailedError    = "data_fetch_failed"
)

// ErrorResponse is the error response body for every API error.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// Classify maps a booking error to its HTTP status and error_type.
// Unknown errors are internal errors.
func Classify(err error) (int, string) {
	switch {
	case stderrors.Is(err, booking.ErrInvalidInterval):
		return http.StatusBadRequest, HttpInvalidIntervalError
	case stderrors.Is(err, booking.ErrInvalidArgument):
		return http.StatusBadRequest, HttpInvalidArgumentError
	case stderrors.Is(err, booking.ErrUnitNotFound):
		return http.StatusNotFound, HttpUnitNotFoundError
	case stderrors.Is(err, booking.ErrNotOwned):
		return http.StatusForbidden, HttpNotOwnedError
	case stderrors.Is(err, booking.ErrUnavailable):
		return http.StatusConflict, HttpUnavailableError
	case stderrors.Is(err, booking.ErrConcurrentConflict):
		return http.StatusConflict, HttpConcurrentConflictError
	case stderrors.Is(err, booking.ErrDataFetchFailed):
		return http.StatusServiceUnavailable, HttpDataFetchFailedError
	default:
		return http.StatusInternalServerError, HttpInternalError
	}
}
