package capacity

import (
	"math"
	"time"

	"crewplan/internal/interval"
)

// MemberAvailability computes the point-in-time utilization snapshot for one
// member. The caller supplies now once; it is never re-read mid-calculation.
func MemberAvailability(data MemberData, pol Policy, now time.Time) Availability {
	var engaged float64
	for _, e := range data.Engagements {
		if e.IsActive && engagementCurrent(e, now) {
			engaged += e.HoursPerWeek
		}
	}

	available := data.WorkingHoursPerWeek - engaged
	if available < 0 {
		available = 0
	}
	var utilization float64
	if data.WorkingHoursPerWeek > 0 {
		utilization = round2(engaged / data.WorkingHoursPerWeek * 100)
	}

	approved := approvedRanges(data.TimeOff)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	res := Availability{
		EngagedHours:         engaged,
		AvailableHours:       available,
		UtilizationPct:       utilization,
		TimeOffDaysThisMonth: interval.DaysInPeriod(approved, monthStart, monthEnd),
		TimeOffDaysThisYear:  interval.DaysInPeriod(approved, yearStart, yearEnd),
	}

	today := interval.Day(now)
	windowEnd := today.AddDate(0, 0, pol.UpcomingWindowDays)
	for _, entry := range data.TimeOff {
		if entry.Status != TimeOffApproved {
			continue
		}
		if interval.Contains(now, entry.StartDate, entry.EndDate) {
			res.IsCurrentlyOnTimeOff = true
		}
		start := interval.Day(entry.StartDate)
		if start.After(today) && start.Before(windowEnd) {
			res.UpcomingTimeOff = append(res.UpcomingTimeOff, entry)
		}
	}
	return res
}

// PeriodAvailability computes hours and time-off over [periodStart, periodEnd].
// Total hours prorate the weekly capacity over the period's working days
// assuming an even spread across the configured work week; part-time schedules
// concentrated on specific weekdays are not modeled.
func PeriodAvailability(data MemberData, pol Policy, periodStart, periodEnd time.Time) PeriodSummary {
	workingDays := interval.WorkingDaysBetween(periodStart, periodEnd)
	perDay := data.WorkingHoursPerWeek / pol.workweek()
	total := perDay * float64(workingDays)

	var engaged float64
	for _, e := range data.Engagements {
		if !e.IsActive {
			continue
		}
		end := interval.Day(periodEnd)
		if e.EndDate != nil && interval.Day(*e.EndDate).Before(end) {
			end = interval.Day(*e.EndDate)
		}
		clampStart, clampEnd, ok := interval.ClampOverlap(e.StartDate, end, periodStart, periodEnd)
		if !ok {
			continue
		}
		overlapDays := interval.WorkingDaysBetween(clampStart, clampEnd)
		engaged += e.HoursPerWeek * float64(overlapDays) / pol.workweek()
	}

	timeOffDays := interval.DaysInPeriod(approvedRanges(data.TimeOff), periodStart, periodEnd)
	effective := total - engaged - perDay*float64(timeOffDays)
	if effective < 0 {
		effective = 0
	}
	return PeriodSummary{
		WorkingDays:             workingDays,
		TotalHours:              round2(total),
		EngagedHours:            round2(engaged),
		TimeOffDays:             timeOffDays,
		EffectiveAvailableHours: round2(effective),
	}
}

// engagementCurrent reports whether now falls within the engagement's date
// range, treating a missing end date as open-ended.
func engagementCurrent(e Engagement, now time.Time) bool {
	day := interval.Day(now)
	if day.Before(interval.Day(e.StartDate)) {
		return false
	}
	if e.EndDate != nil && day.After(interval.Day(*e.EndDate)) {
		return false
	}
	return true
}

func approvedRanges(entries []TimeOffEntry) []interval.Range {
	var ranges []interval.Range
	for _, entry := range entries {
		if entry.Status != TimeOffApproved {
			continue
		}
		ranges = append(ranges, interval.Range{Start: entry.StartDate, End: entry.EndDate})
	}
	return ranges
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
