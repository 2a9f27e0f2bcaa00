package calendar

import "sort"

// Merge sorts intervals by start and coalesces touching or overlapping ones.
// Empty intervals are dropped. The input slice is not modified.
func Merge(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			sorted = append(sorted, iv)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var merged []Interval
	for _, iv := range sorted {
		if n := len(merged); n > 0 && !merged[n-1].End.Before(iv.Start) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Complement returns the parts of window not covered by any of the busy intervals,
// ordered by start. Busy intervals are clipped to window first.
func Complement(window Interval, busy []Interval) []Interval {
	if window.Empty() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, iv := range busy {
		if part, ok := Intersect(iv, window); ok {
			clipped = append(clipped, part)
		}
	}

	var free []Interval
	cursor := window.Start
	for _, iv := range Merge(clipped) {
		if cursor.Before(iv.Start) {
			free = append(free, Interval{Start: cursor, End: iv.Start})
		}
		cursor = iv.End
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
