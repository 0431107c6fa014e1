package capacity

import (
	"fmt"
	"time"

	"crewplan/internal/interval"
)

// ValidateEngagement decides whether a proposed engagement fits the member's
// remaining capacity and conflicts with no existing engagement. Pass the id of
// the engagement being edited as excludeID so an update does not conflict with
// itself; leave it empty for creates. Business-rule failures are reported in
// the result, never as a panic or error.
func ValidateEngagement(data MemberData, candidate Engagement, excludeID string, pol Policy, now time.Time) EngagementValidation {
	res := EngagementValidation{
		Errors:                 []string{},
		Warnings:               []string{},
		ConflictingEngagements: []Engagement{},
	}

	var current float64
	for _, e := range data.Engagements {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if e.IsActive {
			current += e.HoursPerWeek
		}
	}
	res.AvailableHours = data.WorkingHoursPerWeek - current

	if candidate.HoursPerWeek > res.AvailableHours {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"engagement of %gh/week exceeds remaining capacity: %gh/week available of %gh/week total",
			candidate.HoursPerWeek, res.AvailableHours, data.WorkingHoursPerWeek))
	}

	for _, e := range data.Engagements {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if !e.IsActive || e.ProjectID != candidate.ProjectID {
			continue
		}
		if interval.Overlaps(candidate.StartDate, candidate.EndDate, e.StartDate, e.EndDate) {
			res.ConflictingEngagements = append(res.ConflictingEngagements, e)
		}
	}
	if n := len(res.ConflictingEngagements); n > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"member already has %d active engagement(s) on this project in the requested period", n))
	}

	if data.WorkingHoursPerWeek > 0 {
		projected := (current + candidate.HoursPerWeek) / data.WorkingHoursPerWeek * 100
		if projected > pol.WarnUtilizationPct {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"utilization would reach %s of weekly capacity", FormatUtilization(projected)))
		}
	}

	if candidate.EndDate != nil && !interval.Day(*candidate.EndDate).After(interval.Day(candidate.StartDate)) {
		res.Errors = append(res.Errors, "end date must be after start date")
	}
	if candidate.EndDate != nil && candidate.EndDate.After(now.AddDate(pol.MaxFutureYears, 0, 0)) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"end date is more than %d years away; check for a date entry mistake", pol.MaxFutureYears))
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateTimeOff decides whether a proposed time-off entry may be committed.
// Pending entries block as well as approved ones: a pending request may later
// be approved, so overlapping it now would create a latent conflict. Only
// rejected entries are ignored.
func ValidateTimeOff(entries []TimeOffEntry, candidate TimeOffEntry, excludeID string, pol Policy) TimeOffValidation {
	res := TimeOffValidation{
		Errors:             []string{},
		Warnings:           []string{},
		ConflictingEntries: []TimeOffEntry{},
	}

	if interval.Day(candidate.EndDate).Before(interval.Day(candidate.StartDate)) {
		res.Errors = append(res.Errors, "end date must not be before start date")
	}

	for _, e := range entries {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if e.Status == TimeOffRejected {
			continue
		}
		if interval.OverlapDays(candidate.StartDate, candidate.EndDate, e.StartDate, e.EndDate) > 0 {
			res.ConflictingEntries = append(res.ConflictingEntries, e)
			res.Errors = append(res.Errors, fmt.Sprintf(
				"requested period overlaps a %s %s entry from %s to %s",
				e.Status, e.Type,
				interval.Day(e.StartDate).Format("2006-01-02"),
				interval.Day(e.EndDate).Format("2006-01-02")))
		}
	}

	if candidate.Type == TimeOffVacation {
		year := candidate.StartDate.Year()
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		taken := 0
		for _, e := range entries {
			if excludeID != "" && e.ID == excludeID {
				continue
			}
			if e.Status != TimeOffApproved || e.Type != TimeOffVacation {
				continue
			}
			taken += interval.OverlapDays(e.StartDate, e.EndDate, yearStart, yearEnd)
		}
		requested := interval.DaysBetween(candidate.StartDate, candidate.EndDate)
		if total := taken + requested; total > pol.MaxAnnualVacationDays {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"vacation days in %d would reach %d, above the %d-day allowance",
				year, total, pol.MaxAnnualVacationDays))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
