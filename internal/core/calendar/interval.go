package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar date (year, month, day) with no time-of-day and no zone.
// All engine arithmetic is done on Dates; timestamps only exist at the edges.
type Date = civil.Date

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// DateOf returns the calendar date of t in t's own location.
// Callers at the storage boundary must pass timestamps in the zone the date was written in.
func DateOf(t time.Time) Date {
	return civil.DateOf(t)
}

// Midnight converts d to midnight UTC, the representation used for SQL DATE parameters.
func Midnight(d Date) time.Time {
	return d.In(time.UTC)
}

// Interval is a range of calendar dates, half-open: [Start, End).
type Interval struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewInterval builds an interval without validation.
func NewInterval(start, end Date) Interval {
	return Interval{Start: start, End: end}
}

// Day returns the one-day interval [d, d+1).
func Day(d Date) Interval {
	return Interval{Start: d, End: d.AddDays(1)}
}

// Valid reports whether Start <= End.
func (iv Interval) Valid() bool {
	return !iv.End.Before(iv.Start)
}

// Empty reports whether the interval covers no day.
func (iv Interval) Empty() bool {
	return !iv.Start.Before(iv.End)
}

// Days is the number of days covered by the half-open interval; 0 for empty or inverted ones.
func (iv Interval) Days() int {
	if iv.Empty() {
		return 0
	}
	return iv.End.DaysSince(iv.Start)
}

// Covers reports whether other lies entirely inside iv.
func (iv Interval) Covers(other Interval) bool {
	return !other.Start.Before(iv.Start) && !iv.End.Before(other.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start, iv.End)
}

// Overlaps reports strict half-open overlap. Touching intervals
// (one's End equal to the other's Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// OverlapDays is the number of days shared by a and b, never negative.
func OverlapDays(a, b Interval) int {
	start := maxDate(a.Start, b.Start)
	end := minDate(a.End, b.End)
	if !start.Before(end) {
		return 0
	}
	return end.DaysSince(start)
}

// Intersect returns the shared part of a and b; ok is false when they do not overlap.
func Intersect(a, b Interval) (Interval, bool) {
	if !Overlaps(a, b) {
		return Interval{}, false
	}
	return Interval{Start: maxDate(a.Start, b.Start), End: minDate(a.End, b.End)}, true
}

// DaysBetween is the absolute whole-day difference between two dates.
func DaysBetween(d1, d2 Date) int {
	n := d2.DaysSince(d1)
	if n < 0 {
		return -n
	}
	return n
}

// InclusiveDaySpan counts both endpoints: DaysBetween(Start, End) + 1.
func InclusiveDaySpan(iv Interval) int {
	return DaysBetween(iv.Start, iv.End) + 1
}

func maxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}
