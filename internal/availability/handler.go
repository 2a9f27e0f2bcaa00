package availability

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/rentops-lab/rentops/internal/api/v1"
	httperr "github.com/rentops-lab/rentops/internal/core/errors"
)

// OwnerHeader carries the caller's owner scope, set by the upstream gateway.
const OwnerHeader = "X-Owner-ID"

// RegisterRoutes registers the availability and commitment routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/availability/check", s.HandleCheck)
	r.POST("/v1/availability/gaps", s.HandleGaps)
	r.POST("/v1/commitments", s.HandleCreateCommitment)
}

// HandleCheck handles POST /v1/availability/check
func (s *Service) HandleCheck(c *gin.Context) {
	var req v1.AvailabilityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}
	iv, err := req.Validate()
	if err != nil {
		writeError(c, "Invalid availability request", err, nil)
		return
	}

	result, err := s.CheckAvailability(c.Request.Context(), c.GetHeader(OwnerHeader), req.UnitID, iv, req.ExcludeReservationID)
	if err != nil {
		writeError(c, "Availability check failed", err, nil)
		return
	}

	c.JSON(http.StatusOK, v1.AvailabilityCheckResponse{
		Available: result.Available,
		Conflicts: v1.NewCommitmentViews(result.Conflicts),
	})
}

// HandleGaps handles POST /v1/availability/gaps
func (s *Service) HandleGaps(c *gin.Context) {
	var req v1.GapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}
	window, err := req.Validate()
	if err != nil {
		writeError(c, "Invalid gaps request", err, nil)
		return
	}

	gaps, err := s.Suggest(c.Request.Context(), c.GetHeader(OwnerHeader), req.UnitID, window, req.MinGapDays)
	if err != nil {
		writeError(c, "Gap search failed", err, nil)
		return
	}

	c.JSON(http.StatusOK, v1.NewGapsResponse(gaps))
}

// HandleCreateCommitment handles POST /v1/commitments
func (s *Service) HandleCreateCommitment(c *gin.Context) {
	var req v1.CommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}
	commitment, err := req.Validate()
	if err != nil {
		writeError(c, "Invalid commitment request", err, nil)
		return
	}

	created, err := s.Reserve(c.Request.Context(), c.GetHeader(OwnerHeader), commitment)
	if err != nil {
		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			writeError(c, "Requested dates are not available", err, v1.NewCommitmentViews(unavailable.Conflicts))
			return
		}
		writeError(c, "Failed to create commitment", err, nil)
		return
	}

	c.JSON(http.StatusCreated, v1.NewCommitmentView(created))
}

func writeInvalidJSON(c *gin.Context, err error) {
	slog.Warn("[Availability] Invalid JSON payload", "error", err)
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   "Failed to parse request body",
		Details:   err.Error(),
	})
}

func writeError(c *gin.Context, message string, err error, details interface{}) {
	status, errorType := httperr.Classify(err)
	if details == nil {
		details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		slog.Error("[Availability] Request failed", "error", err, "path", c.FullPath())
	}
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   details,
	})
}
