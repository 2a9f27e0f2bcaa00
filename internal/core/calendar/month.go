package calendar

import "time"

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// NextMonth returns the first day of the month after d's month.
func NextMonth(d Date) Date {
	year, month := d.Year, d.Month+1
	if month > time.December {
		month = time.January
		year++
	}
	return Date{Year: year, Month: month, Day: 1}
}

// DaysInMonth returns the actual length of d's calendar month (28-31).
func DaysInMonth(d Date) int {
	return NextMonth(d).DaysSince(StartOfMonth(d))
}

// MonthInterval returns the whole calendar month containing d as a half-open interval.
func MonthInterval(d Date) Interval {
	return Interval{Start: StartOfMonth(d), End: NextMonth(d)}
}

// SplitByMonth cuts iv at calendar-month boundaries. Empty intervals yield nil.
func SplitByMonth(iv Interval) []Interval {
	if iv.Empty() {
		return nil
	}

	var parts []Interval
	cursor := iv.Start
	for cursor.Before(iv.End) {
		end := minDate(NextMonth(cursor), iv.End)
		parts = append(parts, Interval{Start: cursor, End: end})
		cursor = end
	}
	return parts
}

// MonthsSpanned counts the calendar months iv touches.
func MonthsSpanned(iv Interval) int {
	if iv.Empty() {
		return 0
	}
	last := iv.End.AddDays(-1)
	return (last.Year-iv.Start.Year)*12 + int(last.Month) - int(iv.Start.Month) + 1
}
