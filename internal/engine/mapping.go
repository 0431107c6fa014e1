package engine

import (
	"context"
	"fmt"
	"time"

	"crewplan/internal/capacity"
	"crewplan/internal/domain"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toCapacityEngagement(e domain.Engagement) (capacity.Engagement, error) {
	start, err := parseDate(e.StartDate)
	if err != nil {
		return capacity.Engagement{}, fmt.Errorf("engagement %s: %w", e.ID, err)
	}
	end, err := parseDatePtr(e.EndDate)
	if err != nil {
		return capacity.Engagement{}, fmt.Errorf("engagement %s: %w", e.ID, err)
	}
	return capacity.Engagement{
		ID:           e.ID,
		ProjectID:    e.ProjectID,
		HoursPerWeek: e.HoursPerWeek,
		IsActive:     e.IsActive,
		StartDate:    start,
		EndDate:      end,
		Role:         e.Role,
	}, nil
}

func toCapacityTimeOff(e domain.TimeOffEntry) (capacity.TimeOffEntry, error) {
	start, err := parseDate(e.StartDate)
	if err != nil {
		return capacity.TimeOffEntry{}, fmt.Errorf("time off %s: %w", e.ID, err)
	}
	end, err := parseDate(e.EndDate)
	if err != nil {
		return capacity.TimeOffEntry{}, fmt.Errorf("time off %s: %w", e.ID, err)
	}
	return capacity.TimeOffEntry{
		ID:          e.ID,
		Type:        capacity.TimeOffType(e.Type),
		StartDate:   start,
		EndDate:     end,
		Status:      capacity.TimeOffStatus(e.Status),
		Description: e.Description,
	}, nil
}

// memberData assembles the calculation input for one member from storage.
func (e Engine) memberData(ctx context.Context, memberID string) (domain.Member, capacity.MemberData, error) {
	m, err := e.Repo.GetMember(ctx, memberID)
	if err != nil {
		return m, capacity.MemberData{}, err
	}
	engs, err := e.Repo.ListEngagementsByMember(ctx, memberID)
	if err != nil {
		return m, capacity.MemberData{}, err
	}
	entries, err := e.Repo.ListTimeOffByMember(ctx, memberID)
	if err != nil {
		return m, capacity.MemberData{}, err
	}
	data := capacity.MemberData{WorkingHoursPerWeek: m.WorkingHoursPerWeek}
	for _, de := range engs {
		ce, err := toCapacityEngagement(de)
		if err != nil {
			return m, capacity.MemberData{}, err
		}
		data.Engagements = append(data.Engagements, ce)
	}
	for _, dt := range entries {
		ct, err := toCapacityTimeOff(dt)
		if err != nil {
			return m, capacity.MemberData{}, err
		}
		data.TimeOff = append(data.TimeOff, ct)
	}
	joined, err := parseDatePtr(m.JoinedAt)
	if err == nil {
		data.JoinedAt = joined
	}
	return m, data, nil
}
