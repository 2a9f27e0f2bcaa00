package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// feeJSON is the element shape of the reservations.fees JSONB array.
type feeJSON struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func statusStrings(statuses []booking.Status) pq.StringArray {
	out := make(pq.StringArray, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func kindStrings(kinds []booking.Kind) pq.StringArray {
	out := make(pq.StringArray, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}

// scanCommitmentRow scans one commitments row. DATE columns come back as midnight timestamps;
// the calendar date is read in the timestamp's own location so no day shift can occur.
func scanCommitmentRow(row scanner) (booking.Commitment, error) {
	var (
		c            booking.Commitment
		start, end   time.Time
		kind, status string
		label        string
	)
	if err := row.Scan(&c.ID, &c.UnitID, &start, &end, &kind, &status, &label); err != nil {
		return booking.Commitment{}, fmt.Errorf("failed to scan commitment row: %w", err)
	}
	c.Interval = calendar.NewInterval(calendar.DateOf(start), calendar.DateOf(end))
	c.Kind = booking.Kind(kind)
	c.Status = booking.Status(status)
	c.Label = label
	return c, nil
}

// scanReservationRow scans one reservations row. total_value is read as text and parsed
// with shopspring/decimal to keep NUMERIC precision.
func scanReservationRow(row scanner) (booking.MonetaryReservation, error) {
	var (
		r                 booking.MonetaryReservation
		checkIn, checkOut time.Time
		valueStr          string
		feesJSON          []byte
		status            string
	)
	err := row.Scan(&r.ID, &r.UnitID, &checkIn, &checkOut, &valueStr, &feesJSON, &r.Platform, &status, &r.Guests)
	if err != nil {
		return booking.MonetaryReservation{}, fmt.Errorf("failed to scan reservation row: %w", err)
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return booking.MonetaryReservation{}, fmt.Errorf("failed to parse total_value %q for reservation %s: %w", valueStr, r.ID, err)
	}
	r.TotalValue = value
	r.Interval = calendar.NewInterval(calendar.DateOf(checkIn), calendar.DateOf(checkOut))
	r.Status = booking.Status(status)

	if len(feesJSON) > 0 {
		var fees []feeJSON
		if err := json.Unmarshal(feesJSON, &fees); err != nil {
			return booking.MonetaryReservation{}, fmt.Errorf("failed to unmarshal fees for reservation %s: %w", r.ID, err)
		}
		for _, f := range fees {
			r.Fees = append(r.Fees, booking.FeeComponent{Name: f.Name, Amount: f.Amount})
		}
	}
	return r, nil
}
