package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func iv(start, end Date) Interval {
	return Interval{Start: start, End: end}
}

func TestOverlaps(t *testing.T) {
	base := iv(d(2025, 7, 10), d(2025, 7, 15))

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "touching after", other: iv(d(2025, 7, 15), d(2025, 7, 20)), want: false},
		{name: "touching before", other: iv(d(2025, 7, 5), d(2025, 7, 10)), want: false},
		{name: "one day shared", other: iv(d(2025, 7, 14), d(2025, 7, 16)), want: true},
		{name: "contained", other: iv(d(2025, 7, 11), d(2025, 7, 12)), want: true},
		{name: "containing", other: iv(d(2025, 7, 1), d(2025, 7, 31)), want: true},
		{name: "disjoint", other: iv(d(2025, 8, 1), d(2025, 8, 3)), want: false},
		{name: "instant inside", other: iv(d(2025, 7, 12), d(2025, 7, 12)), want: true},
		{name: "instant at end", other: iv(d(2025, 7, 15), d(2025, 7, 15)), want: false},
		{name: "instant at start", other: iv(d(2025, 7, 10), d(2025, 7, 10)), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Overlaps(base, tc.other))
			require.Equal(t, tc.want, Overlaps(tc.other, base))
		})
	}
}

func TestOverlapDays(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want int
	}{
		{name: "touching", a: iv(d(2025, 7, 10), d(2025, 7, 15)), b: iv(d(2025, 7, 15), d(2025, 7, 20)), want: 0},
		{name: "partial", a: iv(d(2025, 7, 10), d(2025, 7, 15)), b: iv(d(2025, 7, 13), d(2025, 7, 20)), want: 2},
		{name: "disjoint clamps", a: iv(d(2025, 7, 1), d(2025, 7, 2)), b: iv(d(2025, 9, 1), d(2025, 9, 2)), want: 0},
		{name: "cross year", a: iv(d(2024, 12, 30), d(2025, 1, 3)), b: iv(d(2025, 1, 1), d(2025, 2, 1)), want: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, OverlapDays(tc.a, tc.b))
			require.Equal(t, tc.want, OverlapDays(tc.b, tc.a))
		})
	}
}

func TestDaysBetweenAndInclusiveSpan(t *testing.T) {
	require.Equal(t, 5, DaysBetween(d(2025, 3, 1), d(2025, 3, 6)))
	require.Equal(t, 5, DaysBetween(d(2025, 3, 6), d(2025, 3, 1)))
	require.Equal(t, 6, InclusiveDaySpan(iv(d(2025, 3, 1), d(2025, 3, 6))))
	require.Equal(t, 1, InclusiveDaySpan(iv(d(2025, 3, 1), d(2025, 3, 1))))
}

func TestIntervalHelpers(t *testing.T) {
	window := iv(d(2025, 1, 1), d(2025, 2, 1))

	require.True(t, window.Valid())
	require.False(t, window.Empty())
	require.Equal(t, 31, window.Days())
	require.True(t, window.Covers(iv(d(2025, 1, 5), d(2025, 2, 1))))
	require.False(t, window.Covers(iv(d(2024, 12, 31), d(2025, 1, 2))))

	inverted := iv(d(2025, 1, 5), d(2025, 1, 1))
	require.False(t, inverted.Valid())
	require.True(t, inverted.Empty())
	require.Equal(t, 0, inverted.Days())

	require.Equal(t, iv(d(2025, 1, 9), d(2025, 1, 10)), Day(d(2025, 1, 9)))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	require.Equal(t, d(2025, 2, 28), got)

	_, err = ParseDate("28/02/2025")
	require.Error(t, err)
}

func TestStayConventions(t *testing.T) {
	stay := iv(d(2025, 7, 10), d(2025, 7, 15))
	window := iv(d(2025, 7, 1), d(2025, 8, 1))

	require.Equal(t, 5, OccupiedNights(stay, window))
	require.Equal(t, 6, BillableDaySpan(stay))
	require.Equal(t, iv(d(2025, 7, 10), d(2025, 7, 16)), BillableInterval(stay))

	// The check-out day is billable but not an occupied night.
	checkoutDay := Day(d(2025, 7, 15))
	require.Equal(t, 0, OccupiedNights(stay, checkoutDay))
	require.Equal(t, 1, BillableDays(stay, checkoutDay))

	inverted := iv(d(2025, 7, 15), d(2025, 7, 10))
	require.Equal(t, 0, BillableDaySpan(inverted))
	require.Equal(t, 0, BillableDays(inverted, window))
}
