package v1

import (
	"fmt"
	"strings"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// AvailabilityCheckRequest asks whether [check_in, check_out) is free on a unit.
type AvailabilityCheckRequest struct {
	UnitID   string `json:"unit_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`

	// ExcludeReservationID ignores one commitment, used when moving an existing booking.
	ExcludeReservationID string `json:"exclude_reservation_id,omitempty"`
}

// Validate checks required fields and returns the requested interval.
// Ordering of the two dates is left to the availability service.
func (r *AvailabilityCheckRequest) Validate() (calendar.Interval, error) {
	if strings.TrimSpace(r.UnitID) == "" {
		return calendar.Interval{}, fmt.Errorf("%w: unit_id is required", booking.ErrInvalidArgument)
	}
	return parseInterval("check_in", r.CheckIn, "check_out", r.CheckOut)
}

// CommitmentView is a commitment as rendered in API responses.
type CommitmentView struct {
	ID        string `json:"id"`
	UnitID    string `json:"unit_id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Label     string `json:"label,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func NewCommitmentView(c booking.Commitment) CommitmentView {
	return CommitmentView{
		ID:        c.ID,
		UnitID:    c.UnitID,
		Kind:      string(c.Kind),
		Status:    string(c.Status),
		Label:     c.Label,
		StartDate: c.Interval.Start.String(),
		EndDate:   c.Interval.End.String(),
	}
}

// NewCommitmentViews converts a slice, never returning nil so JSON renders [].
func NewCommitmentViews(cs []booking.Commitment) []CommitmentView {
	views := make([]CommitmentView, 0, len(cs))
	for _, c := range cs {
		views = append(views, NewCommitmentView(c))
	}
	return views
}

type AvailabilityCheckResponse struct {
	Available bool             `json:"available"`
	Conflicts []CommitmentView `json:"conflicts"`
}

// GapsRequest asks for free stretches of at least MinGapDays within [start_date, end_date).
type GapsRequest struct {
	UnitID     string `json:"unit_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	MinGapDays int    `json:"min_gap_days"`
}

func (r *GapsRequest) Validate() (calendar.Interval, error) {
	if strings.TrimSpace(r.UnitID) == "" {
		return calendar.Interval{}, fmt.Errorf("%w: unit_id is required", booking.ErrInvalidArgument)
	}
	if r.MinGapDays < 0 {
		return calendar.Interval{}, fmt.Errorf("%w: min_gap_days must be >= 0", booking.ErrInvalidArgument)
	}
	return parseInterval("start_date", r.StartDate, "end_date", r.EndDate)
}

type GapView struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

type GapsResponse struct {
	Gaps []GapView `json:"gaps"`
}

func NewGapsResponse(gaps []calendar.Interval) GapsResponse {
	views := make([]GapView, 0, len(gaps))
	for _, g := range gaps {
		views = append(views, GapView{
			StartDate: g.Start.String(),
			EndDate:   g.End.String(),
			Days:      g.Days(),
		})
	}
	return GapsResponse{Gaps: views}
}

// CommitmentRequest creates a stay or cleaning block on a unit.
type CommitmentRequest struct {
	UnitID    string `json:"unit_id"`
	Kind      string `json:"kind"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status,omitempty"`
	Label     string `json:"label,omitempty"`
}

// Validate parses the request into a commitment without an ID. Status defaults to confirmed.
func (r *CommitmentRequest) Validate() (booking.Commitment, error) {
	if strings.TrimSpace(r.UnitID) == "" {
		return booking.Commitment{}, fmt.Errorf("%w: unit_id is required", booking.ErrInvalidArgument)
	}
	kind, err := booking.ParseKind(r.Kind)
	if err != nil {
		return booking.Commitment{}, err
	}
	status := booking.StatusConfirmed
	if r.Status != "" {
		if status, err = booking.ParseStatus(r.Status); err != nil {
			return booking.Commitment{}, err
		}
	}
	iv, err := parseInterval("start_date", r.StartDate, "end_date", r.EndDate)
	if err != nil {
		return booking.Commitment{}, err
	}
	return booking.Commitment{
		UnitID:   r.UnitID,
		Interval: iv,
		Kind:     kind,
		Status:   status,
		Label:    r.Label,
	}, nil
}

func parseInterval(startField, start, endField, end string) (calendar.Interval, error) {
	s, err := calendar.ParseDate(start)
	if err != nil {
		return calendar.Interval{}, fmt.Errorf("%w: %s: %v", booking.ErrInvalidArgument, startField, err)
	}
	e, err := calendar.ParseDate(end)
	if err != nil {
		return calendar.Interval{}, fmt.Errorf("%w: %s: %v", booking.ErrInvalidArgument, endField, err)
	}
	return calendar.NewInterval(s, e), nil
}
