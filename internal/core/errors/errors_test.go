package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rentops-lab/rentops/internal/core/booking"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{fmt.Errorf("check: %w", booking.ErrInvalidInterval), http.StatusBadRequest, HttpInvalidIntervalError},
		{booking.ErrInvalidArgument, http.StatusBadRequest, HttpInvalidArgumentError},
		{fmt.Errorf("unit u1: %w", booking.ErrUnitNotFound), http.StatusNotFound, HttpUnitNotFoundError},
		{booking.ErrNotOwned, http.StatusForbidden, HttpNotOwnedError},
		{booking.ErrUnavailable, http.StatusConflict, HttpUnavailableError},
		{booking.ErrConcurrentConflict, http.StatusConflict, HttpConcurrentConflictError},
		{fmt.Errorf("period 2025-03: %w", booking.ErrDataFetchFailed), http.StatusServiceUnavailable, HttpDataFetchFailedError},
		{fmt.Errorf("boom"), http.StatusInternalServerError, HttpInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.wantType, func(t *testing.T) {
			status, errType := Classify(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantType, errType)
		})
	}
}
