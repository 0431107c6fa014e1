// Package interval provides date-range arithmetic shared by the capacity
// calculator and validators. All intervals are closed and date-granular; a nil
// end means unbounded future. Every function is total: inverted or empty
// inputs yield zero results, never errors.
package interval

import "time"

// Range is a closed date interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to midnight UTC. All comparisons in this package happen at
// day granularity so that callers can pass timestamps or bare dates
// interchangeably.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether [startA, endA] intersects [startB, endB].
// A nil end is treated as unbounded future. Symmetric in its arguments.
func Overlaps(startA time.Time, endA *time.Time, startB time.Time, endB *time.Time) bool {
	a0 := Day(startA)
	b0 := Day(startB)
	// A starts after B ends, or B starts after A ends.
	if endB != nil && a0.After(Day(*endB)) {
		return false
	}
	if endA != nil && b0.After(Day(*endA)) {
		return false
	}
	return true
}

// ClampOverlap returns the intersection of two closed intervals, or ok=false
// when they are disjoint or either interval is inverted.
func ClampOverlap(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time, bool) {
	a0, a1 := Day(aStart), Day(aEnd)
	b0, b1 := Day(bStart), Day(bEnd)
	if a0.After(a1) || b0.After(b1) {
		return time.Time{}, time.Time{}, false
	}
	start := a0
	if b0.After(start) {
		start = b0
	}
	end := a1
	if b1.Before(end) {
		end = b1
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// DaysBetween counts calendar days from start to end inclusive.
// Returns 0 when start is after end.
func DaysBetween(start, end time.Time) int {
	s, e := Day(start), Day(end)
	if s.After(e) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// WorkingDaysBetween counts calendar days from start to end inclusive,
// excluding Saturdays and Sundays. Returns 0 when start is after end.
func WorkingDaysBetween(start, end time.Time) int {
	s, e := Day(start), Day(end)
	if s.After(e) {
		return 0
	}
	days := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

// OverlapDays returns the inclusive day count of the overlap between
// [aStart, aEnd] and [bStart, bEnd], or 0 when disjoint.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start, end, ok := ClampOverlap(aStart, aEnd, bStart, bEnd)
	if !ok {
		return 0
	}
	return DaysBetween(start, end)
}

// DaysInPeriod sums the inclusive day count of each range's overlap with
// [periodStart, periodEnd]. Ranges with no overlap contribute 0.
func DaysInPeriod(ranges []Range, periodStart, periodEnd time.Time) int {
	total := 0
	for _, r := range ranges {
		total += OverlapDays(r.Start, r.End, periodStart, periodEnd)
	}
	return total
}

// Contains reports whether t falls within [start, end] at day granularity.
func Contains(t, start, end time.Time) bool {
	d := Day(t)
	return !d.Before(Day(start)) && !d.After(Day(end))
}
