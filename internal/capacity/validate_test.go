package capacity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewplan/internal/capacity"
)

func TestValidateEngagementCapacityError(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 30, IsActive: true, StartDate: date(2024, 1, 1)},
		},
	}
	candidate := capacity.Engagement{ProjectID: "p2", HoursPerWeek: 15, IsActive: true, StartDate: date(2024, 7, 1)}
	got := capacity.ValidateEngagement(data, candidate, "", capacity.DefaultPolicy(), fixedNow)
	assert.False(t, got.Valid)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "15")
	assert.Contains(t, got.Errors[0], "10")
	assert.Contains(t, got.Errors[0], "40")
	assert.Equal(t, 10.0, got.AvailableHours)
	assert.Empty(t, got.ConflictingEngagements)
}

func TestValidateEngagementSameProjectConflict(t *testing.T) {
	existing := capacity.Engagement{
		ID: "e1", ProjectID: "p1", HoursPerWeek: 10, IsActive: true,
		StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 30)),
	}
	data := capacity.MemberData{WorkingHoursPerWeek: 40, Engagements: []capacity.Engagement{existing}}
	candidate := capacity.Engagement{
		ProjectID: "p1", HoursPerWeek: 5, IsActive: true,
		StartDate: date(2024, 3, 1), EndDate: ptr(date(2024, 4, 1)),
	}
	got := capacity.ValidateEngagement(data, candidate, "", capacity.DefaultPolicy(), fixedNow)
	assert.False(t, got.Valid)
	require.Len(t, got.ConflictingEngagements, 1)
	assert.Equal(t, "e1", got.ConflictingEngagements[0].ID)
}

func TestValidateEngagementConflictSymmetry(t *testing.T) {
	x := capacity.Engagement{
		ID: "x", ProjectID: "p1", HoursPerWeek: 5, IsActive: true,
		StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 30)),
	}
	y := capacity.Engagement{
		ID: "y", ProjectID: "p1", HoursPerWeek: 5, IsActive: true,
		StartDate: date(2024, 3, 1), EndDate: ptr(date(2024, 4, 1)),
	}
	pol := capacity.DefaultPolicy()
	withX := capacity.MemberData{WorkingHoursPerWeek: 40, Engagements: []capacity.Engagement{x}}
	withY := capacity.MemberData{WorkingHoursPerWeek: 40, Engagements: []capacity.Engagement{y}}
	assert.Len(t, capacity.ValidateEngagement(withX, y, "", pol, fixedNow).ConflictingEngagements, 1)
	assert.Len(t, capacity.ValidateEngagement(withY, x, "", pol, fixedNow).ConflictingEngagements, 1)
}

func TestValidateEngagementExcludesSelfOnEdit(t *testing.T) {
	existing := capacity.Engagement{
		ID: "e1", ProjectID: "p1", HoursPerWeek: 10, IsActive: true,
		StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 30)),
	}
	data := capacity.MemberData{WorkingHoursPerWeek: 40, Engagements: []capacity.Engagement{existing}}
	edited := existing
	edited.HoursPerWeek = 12
	got := capacity.ValidateEngagement(data, edited, "e1", capacity.DefaultPolicy(), fixedNow)
	assert.True(t, got.Valid)
	assert.Empty(t, got.ConflictingEngagements)
	assert.Equal(t, 40.0, got.AvailableHours)
}

func TestValidateEngagementUtilizationWarning(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 30, IsActive: true, StartDate: date(2024, 1, 1)},
		},
	}
	candidate := capacity.Engagement{ProjectID: "p2", HoursPerWeek: 8, IsActive: true, StartDate: date(2024, 7, 1)}
	got := capacity.ValidateEngagement(data, candidate, "", capacity.DefaultPolicy(), fixedNow)
	assert.True(t, got.Valid, "warnings do not block")
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "95.0%")
}

func TestValidateEngagementDateErrors(t *testing.T) {
	data := capacity.MemberData{WorkingHoursPerWeek: 40}
	candidate := capacity.Engagement{
		ProjectID: "p1", HoursPerWeek: 5, IsActive: true,
		StartDate: date(2024, 7, 10), EndDate: ptr(date(2024, 7, 10)),
	}
	got := capacity.ValidateEngagement(data, candidate, "", capacity.DefaultPolicy(), fixedNow)
	assert.False(t, got.Valid)
	assert.Contains(t, got.Errors, "end date must be after start date")

	farFuture := capacity.Engagement{
		ProjectID: "p1", HoursPerWeek: 5, IsActive: true,
		StartDate: date(2024, 7, 10), EndDate: ptr(date(2099, 1, 1)),
	}
	got = capacity.ValidateEngagement(data, farFuture, "", capacity.DefaultPolicy(), fixedNow)
	assert.True(t, got.Valid)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "10 years")
}

func TestValidateEngagementNegativeAvailableHours(t *testing.T) {
	data := capacity.MemberData{
		WorkingHoursPerWeek: 40,
		Engagements: []capacity.Engagement{
			{ID: "e1", ProjectID: "p1", HoursPerWeek: 50, IsActive: true, StartDate: date(2024, 1, 1)},
		},
	}
	candidate := capacity.Engagement{ProjectID: "p2", HoursPerWeek: 1, IsActive: true, StartDate: date(2024, 7, 1)}
	got := capacity.ValidateEngagement(data, candidate, "", capacity.DefaultPolicy(), fixedNow)
	assert.False(t, got.Valid)
	assert.Equal(t, -10.0, got.AvailableHours, "validator reports the unclamped figure")
}

func TestValidateTimeOffOverlap(t *testing.T) {
	entries := []capacity.TimeOffEntry{
		{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
			StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 10)},
	}
	candidate := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 7, 5), EndDate: date(2024, 7, 15),
	}
	got := capacity.ValidateTimeOff(entries, candidate, "", capacity.DefaultPolicy())
	assert.False(t, got.Valid)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "overlaps")
	require.Len(t, got.ConflictingEntries, 1)
	assert.Equal(t, "t1", got.ConflictingEntries[0].ID)
}

func TestValidateTimeOffPendingBlocks(t *testing.T) {
	entries := []capacity.TimeOffEntry{
		{ID: "t1", Type: capacity.TimeOffSickLeave, Status: capacity.TimeOffPending,
			StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 5)},
		{ID: "t2", Type: capacity.TimeOffVacation, Status: capacity.TimeOffRejected,
			StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 5)},
	}
	candidate := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 8, 3), EndDate: date(2024, 8, 4),
	}
	got := capacity.ValidateTimeOff(entries, candidate, "", capacity.DefaultPolicy())
	assert.False(t, got.Valid, "pending entries block, rejected ones do not")
	assert.Len(t, got.ConflictingEntries, 1)
}

func TestValidateTimeOffExcludesSelfOnEdit(t *testing.T) {
	entries := []capacity.TimeOffEntry{
		{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
			StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 10)},
	}
	edited := entries[0]
	edited.EndDate = date(2024, 7, 12)
	got := capacity.ValidateTimeOff(entries, edited, "t1", capacity.DefaultPolicy())
	assert.True(t, got.Valid)
}

func TestValidateTimeOffInvertedDates(t *testing.T) {
	candidate := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 7, 10), EndDate: date(2024, 7, 5),
	}
	got := capacity.ValidateTimeOff(nil, candidate, "", capacity.DefaultPolicy())
	assert.False(t, got.Valid)
	assert.Contains(t, got.Errors, "end date must not be before start date")

	// Single-day entries are fine: end date is inclusive.
	oneDay := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 7, 5), EndDate: date(2024, 7, 5),
	}
	assert.True(t, capacity.ValidateTimeOff(nil, oneDay, "", capacity.DefaultPolicy()).Valid)
}

func TestValidateTimeOffVacationAllowanceWarning(t *testing.T) {
	entries := []capacity.TimeOffEntry{
		{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
			StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 20)}, // 20 days
		// sick leave never counts against the vacation allowance
		{ID: "t2", Type: capacity.TimeOffSickLeave, Status: capacity.TimeOffApproved,
			StartDate: date(2024, 3, 1), EndDate: date(2024, 3, 20)},
	}
	candidate := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 9, 2), EndDate: date(2024, 9, 11), // 10 more days
	}
	got := capacity.ValidateTimeOff(entries, candidate, "", capacity.DefaultPolicy())
	assert.True(t, got.Valid, "the allowance is a soft limit")
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "30")
	assert.Contains(t, got.Warnings[0], "25")
}

func TestValidateTimeOffIdempotent(t *testing.T) {
	entries := []capacity.TimeOffEntry{
		{ID: "t1", Type: capacity.TimeOffVacation, Status: capacity.TimeOffApproved,
			StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 10)},
	}
	candidate := capacity.TimeOffEntry{
		Type: capacity.TimeOffVacation, Status: capacity.TimeOffPending,
		StartDate: date(2024, 7, 5), EndDate: date(2024, 7, 15),
	}
	first := capacity.ValidateTimeOff(entries, candidate, "", capacity.DefaultPolicy())
	second := capacity.ValidateTimeOff(entries, candidate, "", capacity.DefaultPolicy())
	assert.Equal(t, first, second)
}
