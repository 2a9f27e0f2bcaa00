package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/rentops-lab/rentops/internal/api/v1"
	"github.com/rentops-lab/rentops/internal/core/booking"
	httperr "github.com/rentops-lab/rentops/internal/core/errors"
	"github.com/rentops-lab/rentops/internal/core/storage"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func doJSON(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandleCheck_StatusMapping(t *testing.T) {
	store := newStore(t, stay("c1", span(mar(12), mar(13))))
	r := newRouter(NewService(store, store, Options{}))

	tests := []struct {
		name           string
		body           string
		owner          string
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "available",
			body:           `{"unit_id":"unit-1","check_in":"2025-03-10","check_out":"2025-03-12"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed json",
			body:           `{"unit_id":`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   httperr.HttpInvalidJsonError,
		},
		{
			name:           "bad date",
			body:           `{"unit_id":"unit-1","check_in":"10/03/2025","check_out":"2025-03-12"}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   httperr.HttpInvalidArgumentError,
		},
		{
			name:           "inverted interval",
			body:           `{"unit_id":"unit-1","check_in":"2025-03-12","check_out":"2025-03-10"}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   httperr.HttpInvalidIntervalError,
		},
		{
			name:           "unknown unit",
			body:           `{"unit_id":"nope","check_in":"2025-03-10","check_out":"2025-03-12"}`,
			expectedStatus: http.StatusNotFound,
			expectedType:   httperr.HttpUnitNotFoundError,
		},
		{
			name:           "foreign unit",
			body:           `{"unit_id":"unit-1","check_in":"2025-03-10","check_out":"2025-03-12"}`,
			owner:          "owner-b",
			expectedStatus: http.StatusForbidden,
			expectedType:   httperr.HttpNotOwnedError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.owner != "" {
				headers[OwnerHeader] = tc.owner
			}
			resp := doJSON(r, http.MethodPost, "/v1/availability/check", tc.body, headers)
			if resp.Code != tc.expectedStatus {
				t.Logf("unexpected response body: %s", resp.Body.String())
			}
			require.Equal(t, tc.expectedStatus, resp.Code)

			if tc.expectedType != "" {
				var body httperr.ErrorResponse
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
				require.Equal(t, tc.expectedType, body.ErrorType)
			}
		})
	}
}

func TestHandleCheck_ReturnsConflicts(t *testing.T) {
	store := newStore(t, stay("c1", span(mar(12), mar(13))))
	r := newRouter(NewService(store, store, Options{}))

	resp := doJSON(r, http.MethodPost, "/v1/availability/check",
		`{"unit_id":"unit-1","check_in":"2025-03-10","check_out":"2025-03-14"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body v1.AvailabilityCheckResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.False(t, body.Available)
	require.Len(t, body.Conflicts, 1)
	require.Equal(t, "c1", body.Conflicts[0].ID)
	require.Equal(t, "2025-03-12", body.Conflicts[0].StartDate)
}

func TestHandleCheck_DataFetchFailureIs503(t *testing.T) {
	commitments := &mockCommitmentStore{}
	units := &mockUnitStore{}
	units.On("FetchUnit", mock.Anything, "unit-1").Return(booking.Unit{}, errors.New("timeout"))
	r := newRouter(NewService(commitments, units, Options{}))

	resp := doJSON(r, http.MethodPost, "/v1/availability/check",
		`{"unit_id":"unit-1","check_in":"2025-03-10","check_out":"2025-03-14"}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpDataFetchFailedError, body.ErrorType)
}

func TestHandleGaps(t *testing.T) {
	store := newStore(t,
		stay("c1", span(mar(1), mar(5))),
		stay("c2", span(mar(10), mar(12))),
	)
	r := newRouter(NewService(store, store, Options{}))

	resp := doJSON(r, http.MethodPost, "/v1/availability/gaps",
		`{"unit_id":"unit-1","start_date":"2025-03-01","end_date":"2025-03-20","min_gap_days":3}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body v1.GapsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, []v1.GapView{
		{StartDate: "2025-03-05", EndDate: "2025-03-10", Days: 5},
		{StartDate: "2025-03-12", EndDate: "2025-03-20", Days: 8},
	}, body.Gaps)

	resp = doJSON(r, http.MethodPost, "/v1/availability/gaps",
		`{"unit_id":"unit-1","start_date":"2025-03-01","end_date":"2025-03-20","min_gap_days":-2}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleCreateCommitment(t *testing.T) {
	store := newStore(t, stay("c1", span(mar(12), mar(13))))
	r := newRouter(NewService(store, store, Options{}))

	resp := doJSON(r, http.MethodPost, "/v1/commitments",
		`{"unit_id":"unit-1","kind":"cleaning_block","start_date":"2025-03-13","end_date":"2025-03-14"}`, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var created v1.CommitmentView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "cleaning_block", created.Kind)

	resp = doJSON(r, http.MethodPost, "/v1/commitments",
		`{"unit_id":"unit-1","kind":"stay","start_date":"2025-03-10","end_date":"2025-03-14"}`, nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	var body struct {
		ErrorType string              `json:"error_type"`
		Details   []v1.CommitmentView `json:"details"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpUnavailableError, body.ErrorType)
	require.Len(t, body.Details, 2)
}

func TestHandleCreateCommitment_ConcurrentConflict(t *testing.T) {
	commitments := &mockCommitmentStore{}
	units := &mockUnitStore{}
	units.On("FetchUnit", mock.Anything, "unit-1").Return(booking.Unit{ID: "unit-1"}, nil)
	commitments.On("FetchCommitments", mock.Anything, mock.Anything).Return([]booking.Commitment{}, nil)
	commitments.On("SaveCommitment", mock.Anything, mock.Anything).Return(storage.ErrOverlap)
	r := newRouter(NewService(commitments, units, Options{}))

	resp := doJSON(r, http.MethodPost, "/v1/commitments",
		`{"unit_id":"unit-1","kind":"stay","start_date":"2025-03-10","end_date":"2025-03-14"}`, nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpConcurrentConflictError, body.ErrorType)
}

