package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rentops-lab/rentops/internal/metrics"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error { return p.err }

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		db             HealthChecker
		expectedStatus int
		expectedBody   string
	}{
		{name: "memory store", db: nil, expectedStatus: http.StatusOK, expectedBody: `"database":"memory"`},
		{name: "database up", db: stubPinger{}, expectedStatus: http.StatusOK, expectedBody: `"database":"connected"`},
		{name: "database down", db: stubPinger{err: errors.New("dial tcp: refused")}, expectedStatus: http.StatusServiceUnavailable, expectedBody: `"unhealthy"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(":0", tc.db, "release", nil, 0)
			resp := get(s, "/health")
			require.Equal(t, tc.expectedStatus, resp.Code)
			require.Contains(t, resp.Body.String(), tc.expectedBody)
		})
	}
}

func TestHealth_SQLDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	s := New(":0", db, "release", nil, time.Second)
	resp := get(s, "/health")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.IncAvailabilityCheck("available")

	s := New(":0", nil, "release", m, 0)
	resp := get(s, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `rentops_availability_checks_total{result="available"} 1`)

	s = New(":0", nil, "release", nil, 0)
	require.Equal(t, http.StatusNotFound, get(s, "/metrics").Code)
}

func TestRequestTimeoutMiddleware(t *testing.T) {
	s := New(":0", nil, "release", nil, 50*time.Millisecond)
	var deadlineSet bool
	s.Engine.GET("/probe", func(c *gin.Context) {
		_, deadlineSet = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	resp := get(s, "/probe")
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.True(t, deadlineSet)
}
