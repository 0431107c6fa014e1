package engine

import (
	"context"
	"errors"

	"crewplan/internal/capacity"
	"crewplan/internal/domain"
)

// MemberAvailabilityResult pairs the member with their utilization snapshot.
type MemberAvailabilityResult struct {
	Member       domain.Member         `json:"member"`
	Availability capacity.Availability `json:"availability"`
	Status       capacity.Status       `json:"status"`
}

// MemberAvailability computes the point-in-time availability snapshot for one
// member using the engine clock.
func (e Engine) MemberAvailability(ctx context.Context, memberID string) (MemberAvailabilityResult, error) {
	m, data, err := e.memberData(ctx, memberID)
	if err != nil {
		return MemberAvailabilityResult{}, err
	}
	avail := capacity.MemberAvailability(data, e.policy(), e.now())
	return MemberAvailabilityResult{
		Member:       m,
		Availability: avail,
		Status:       capacity.UtilizationStatus(avail.UtilizationPct),
	}, nil
}

// MemberPeriodAvailability computes availability over an explicit date range.
func (e Engine) MemberPeriodAvailability(ctx context.Context, memberID, startDate, endDate string) (capacity.PeriodSummary, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return capacity.PeriodSummary{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return capacity.PeriodSummary{}, err
	}
	if end.Before(start) {
		return capacity.PeriodSummary{}, errors.New("end date must not be before start date")
	}
	_, data, err := e.memberData(ctx, memberID)
	if err != nil {
		return capacity.PeriodSummary{}, err
	}
	return capacity.PeriodAvailability(data, e.policy(), start, end), nil
}

// TeamAvailability returns the snapshot for every member, ordered by name.
func (e Engine) TeamAvailability(ctx context.Context) ([]MemberAvailabilityResult, error) {
	members, err := e.Repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	now := e.now()
	pol := e.policy()
	res := make([]MemberAvailabilityResult, 0, len(members))
	for _, m := range members {
		_, data, err := e.memberData(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		avail := capacity.MemberAvailability(data, pol, now)
		res = append(res, MemberAvailabilityResult{
			Member:       m,
			Availability: avail,
			Status:       capacity.UtilizationStatus(avail.UtilizationPct),
		})
	}
	return res, nil
}
