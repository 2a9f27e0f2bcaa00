package reporting

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentops-lab/rentops/internal/aggregation"
	v1 "github.com/rentops-lab/rentops/internal/api/v1"
	httperr "github.com/rentops-lab/rentops/internal/core/errors"
)

const (
	// OwnerHeader carries the caller's owner scope, set by the upstream gateway.
	OwnerHeader = "X-Owner-ID"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RegisterRoutes registers the revenue reporting routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/revenue", s.HandleRevenue)
	r.GET("/v1/revenue/export", s.HandleExport)
}

// HandleRevenue handles GET /v1/revenue
// Query parameters: start_date, end_date (inclusive, YYYY-MM-DD), unit_id
func (s *Service) HandleRevenue(c *gin.Context) {
	report, ok := s.reportFromRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleExport handles GET /v1/revenue/export and serves the report as an xlsx workbook.
func (s *Service) HandleExport(c *gin.Context) {
	report, ok := s.reportFromRequest(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, report); err != nil {
		slog.Error("[Reporting] Failed to build workbook", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to build workbook",
			Details:   err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("revenue_%s_%s.xlsx", report.StartDate, report.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Service) reportFromRequest(c *gin.Context) (v1.RevenueReport, bool) {
	var query v1.RevenueQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return v1.RevenueReport{}, false
	}

	start, end, err := query.Validate()
	if err != nil {
		writeError(c, "Invalid revenue query", err)
		return v1.RevenueReport{}, false
	}

	report, err := s.Report(c.Request.Context(), aggregation.Query{
		Start:   start,
		End:     end,
		UnitID:  query.UnitID,
		OwnerID: c.GetHeader(OwnerHeader),
	})
	if err != nil {
		writeError(c, "Failed to aggregate revenue", err)
		return v1.RevenueReport{}, false
	}
	return report, true
}

func writeError(c *gin.Context, message string, err error) {
	status, errorType := httperr.Classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("[Reporting] Request failed", "error", err, "path", c.FullPath())
	}
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   err.Error(),
	})
}
