package capacity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crewplan/internal/capacity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

var fixedNow = time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC)

func TestMemberAvailabilitySnapshot(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 20, IsActive: true, StartDate: date(2024, 1, 1)},
			{ID: "e2", ProjectID: "p2", HoursPerWeek: 10, IsActive: true, StartDate: date(2024, 6, 1), EndDate: ptr(date(2024, 12, 31))},
			// ended before now, must not count
			{ID: "e3", ProjectID: "p3", HoursPerWeek: 15, IsActive: true, StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 3, 31))},
			// inactive, must not count
			{ID: "e4", ProjectID: "p4", HoursPerWeek: 5, IsActive: false, StartDate: date(2024, 1, 1)},
			// starts in the future, must not count
			{ID: "e5", ProjectID: "p5", HoursPerWeek: 5, IsActive: true, StartDate: date(2024, 9, 1)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.Equal(t, 30.0, got.EngagedHours)
	assert.Equal(t, 10.0, got.AvailableHours)
	assert.Equal(t, 75.0, got.UtilizationPct)
	assert.False(t, got.IsCurrentlyOnTimeOff)
}

func TestAvailableHoursClampedUtilizationNot(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 35, IsActive: true, StartDate: date(2024, 1, 1)},
			{ID: "e2", ProjectID: "p2", HoursPerWeek: 15, IsActive: true, StartDate: date(2024, 1, 1)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.Equal(t, 0.0, got.AvailableHours, "availability is clamped at zero")
	assert.Equal(t, 125.0, got.UtilizationPct, "utilization above 100 is reported, not clamped")
}

func TestZeroWorkingHours(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 0,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 10, IsActive: true, StartDate: date(2024, 1, 1)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.Equal(t, 0.0, got.UtilizationPct)
	assert.Equal(t, 0.0, got.AvailableHours)
}

func TestTimeOffDayCounts(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		TimeOff: []capacity.TimeOffEntry{
			{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 5)},
			{ID: "t2", Type: capacity.TimeOffSickLeave, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 3, 11), EndDate: date(2024, 3, 12)},
			// pending entries never reduce availability
			{ID: "t3", Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
				StartDate: date(2024, 7, 20), EndDate: date(2024, 7, 25)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.Equal(t, 5, got.TimeOffDaysThisMonth)
	assert.Equal(t, 7, got.TimeOffDaysThisYear)
}

func TestCurrentlyOnTimeOffKeepsEngagementFigures(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 25, IsActive: true, StartDate: date(2024, 1, 1)},
		},
		TimeOff: []capacity.TimeOffEntry{
			{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 7, 10), EndDate: date(2024, 7, 20)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.True(t, got.IsCurrentlyOnTimeOff)
	// Time off reduces period availability, not the point-in-time engaged figure.
	assert.Equal(t, 25.0, got.EngagedHours)
	assert.Equal(t, 15.0, got.AvailableHours)
}

func TestUpcomingTimeOffWindow(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		TimeOff: []capacity.TimeOffEntry{
			{ID: "soon", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 5)},
			{ID: "far", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 9, 20), EndDate: date(2024, 9, 25)},
			{ID: "past", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 5)},
			{ID: "pending", Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
				StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 5)},
		},
	}
	got := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	if assert.Len(t, got.UpcomingTimeOff, 1) {
		assert.Equal(t, "soon", got.UpcomingTimeOff[0].ID)
	}
}

func TestMemberAvailabilityIdempotent(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 38.5,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 17.3, IsActive: true, StartDate: date(2024, 1, 1)},
		},
		TimeOff: []capacity.TimeOffEntry{
			{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 3)},
		},
	}
	first := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	second := capacity.MemberAvailability(data, capacity.DefaultPolicy(), fixedNow)
	assert.Equal(t, first, second)
}

func TestPeriodAvailabilityFullWeek(t *testing.T) {
	data := capacity.MemberData{WorkingHoursPerWeek: 40}
	// Mon 2024-07-01 .. Fri 2024-07-05: five working days, no weekend inside.
	got := capacity.PeriodAvailability(data, capacity.DefaultPolicy(), date(2024, 7, 1), date(2024, 7, 5))
	assert.Equal(t, 5, got.WorkingDays)
	assert.Equal(t, 40.0, got.TotalHours)
	assert.Equal(t, 0.0, got.EngagedHours)
	assert.Equal(t, 40.0, got.EffectiveAvailableHours)
}

func TestPeriodAvailabilityProratesEngagements(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			// covers the first working week of a two-week period
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 20, IsActive: true,
				StartDate: date(2024, 7, 1), EndDate: ptr(date(2024, 7, 5))},
		},
	}
	got := capacity.PeriodAvailability(data, capacity.DefaultPolicy(), date(2024, 7, 1), date(2024, 7, 12))
	assert.Equal(t, 10, got.WorkingDays)
	assert.Equal(t, 80.0, got.TotalHours)
	// 20h/week over 5 of 10 working days.
	assert.Equal(t, 20.0, got.EngagedHours)
	assert.Equal(t, 60.0, got.EffectiveAvailableHours)
}

func TestPeriodAvailabilitySubtractsTimeOff(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		TimeOff: []capacity.TimeOffEntry{
			{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 7, 3), EndDate: date(2024, 7, 4)},
		},
	}
	got := capacity.PeriodAvailability(data, capacity.DefaultPolicy(), date(2024, 7, 1), date(2024, 7, 5))
	assert.Equal(t, 2, got.TimeOffDays)
	assert.Equal(t, 24.0, got.EffectiveAvailableHours)
}

func TestPeriodAvailabilityNeverNegative(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 60, IsActive: true, StartDate: date(2024, 1, 1)},
		},
		TimeOff: []capacity.TimeOffEntry{
			{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
				StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 5)},
		},
	}
	got := capacity.PeriodAvailability(data, capacity.DefaultPolicy(), date(2024, 7, 1), date(2024, 7, 5))
	assert.Equal(t, 0.0, got.EffectiveAvailableHours)
}
