package calendar

// Two day-counting conventions coexist and must not be swapped:
//
//   - nights: a stay [checkIn, checkOut) occupies the nights from check-in up to,
//     but not including, check-out. Occupancy counts nights.
//   - billable days: proration counts check-in through check-out inclusive, so the
//     check-out day carries a share of the value.

// OccupiedNights is the number of nights of stay that fall inside window.
func OccupiedNights(stay, window Interval) int {
	return OverlapDays(stay, window)
}

// BillableInterval extends a stay to include its check-out day: [checkIn, checkOut+1).
func BillableInterval(stay Interval) Interval {
	return Interval{Start: stay.Start, End: stay.End.AddDays(1)}
}

// BillableDaySpan is the total number of billable days of a stay (check-in and
// check-out both counted). Inverted stays have no billable days.
func BillableDaySpan(stay Interval) int {
	if !stay.Valid() {
		return 0
	}
	return InclusiveDaySpan(stay)
}

// BillableDays is the number of billable days of stay that fall inside period.
func BillableDays(stay, period Interval) int {
	if !stay.Valid() {
		return 0
	}
	return OverlapDays(BillableInterval(stay), period)
}
