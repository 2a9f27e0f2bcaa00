package v1

import (
	"fmt"
	"strings"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// RevenueQuery is the reporting window given as inclusive calendar dates.
type RevenueQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	UnitID    string `form:"unit_id"`
}

// Validate returns the window as [start_date, end_date]. An end before the start is an
// invalid interval, a single day is allowed.
func (q *RevenueQuery) Validate() (start, end calendar.Date, err error) {
	if strings.TrimSpace(q.StartDate) == "" || strings.TrimSpace(q.EndDate) == "" {
		return start, end, fmt.Errorf("%w: start_date and end_date are required", booking.ErrInvalidArgument)
	}
	if start, err = calendar.ParseDate(q.StartDate); err != nil {
		return start, end, fmt.Errorf("%w: start_date: %v", booking.ErrInvalidArgument, err)
	}
	if end, err = calendar.ParseDate(q.EndDate); err != nil {
		return start, end, fmt.Errorf("%w: end_date: %v", booking.ErrInvalidArgument, err)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: end_date %s is before start_date %s", booking.ErrInvalidInterval, end, start)
	}
	return start, end, nil
}

// PeriodView is one reporting period. EndDate is the last day inside the period.
type PeriodView struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Revenue   string `json:"revenue"`
}

// RevenueReport is the aggregation result as served to dashboards. Amounts are
// decimal strings rounded to cents.
type RevenueReport struct {
	StartDate         string              `json:"start_date"`
	EndDate           string              `json:"end_date"`
	UnitID            string              `json:"unit_id,omitempty"`
	Granularity       string              `json:"granularity"`
	Periods           []PeriodView        `json:"periods"`
	PerUnit           map[string][]string `json:"per_unit"`
	PerPlatform       map[string]string   `json:"per_platform"`
	PerFee            map[string]string   `json:"per_fee"`
	PeakPerUnit       map[string]string   `json:"peak_per_unit"`
	TotalRevenue      string              `json:"total_revenue"`
	OccupancyRate     int64               `json:"occupancy_rate"`
	OccupiedNights    int                 `json:"occupied_nights"`
	PossibleNights    int                 `json:"possible_nights"`
	TotalReservations int                 `json:"total_reservations"`
	TotalGuests       int                 `json:"total_guests"`
}
