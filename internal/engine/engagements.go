package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crewplan/internal/capacity"
	"crewplan/internal/domain"
	"crewplan/internal/events"
)

func (e Engine) policy() capacity.Policy {
	if e.Config == nil {
		return capacity.DefaultPolicy()
	}
	return e.Config.Policy()
}

// EngagementCreateOptions are parameters for allocating a member to a project.
type EngagementCreateOptions struct {
	ID           string
	MemberID     string
	ProjectID    string
	HoursPerWeek float64
	StartDate    string
	EndDate      string
	Role         string
	ActorID      string

	// Force commits the engagement even when validation reports errors.
	Force bool
}

// CreateEngagement validates the proposed allocation against the member's
// remaining capacity and writes it if it passes (or if forced). The validation
// verdict is returned in every case so callers can surface warnings even on
// success.
func (e Engine) CreateEngagement(ctx context.Context, opts EngagementCreateOptions) (domain.Engagement, capacity.EngagementValidation, error) {
	var verdict capacity.EngagementValidation
	if opts.HoursPerWeek <= 0 {
		return domain.Engagement{}, verdict, errors.New("hours per week must be positive")
	}
	if opts.StartDate == "" {
		return domain.Engagement{}, verdict, errors.New("start date is required")
	}
	if _, err := e.Repo.GetProject(ctx, opts.ProjectID); err != nil {
		return domain.Engagement{}, verdict, fmt.Errorf("project %s: %w", opts.ProjectID, err)
	}
	_, data, err := e.memberData(ctx, opts.MemberID)
	if err != nil {
		return domain.Engagement{}, verdict, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := e.now().UTC().Format(time.RFC3339)
	eng := domain.Engagement{
		ID:           id,
		MemberID:     opts.MemberID,
		ProjectID:    opts.ProjectID,
		HoursPerWeek: opts.HoursPerWeek,
		IsActive:     true,
		StartDate:    opts.StartDate,
		EndDate:      optionalString(opts.EndDate),
		Role:         opts.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	candidate, err := toCapacityEngagement(eng)
	if err != nil {
		return domain.Engagement{}, verdict, err
	}
	verdict = capacity.ValidateEngagement(data, candidate, "", e.policy(), e.now())
	if !verdict.Valid && !opts.Force {
		return domain.Engagement{}, verdict, &EngagementRejectedError{Result: verdict}
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Engagement{}, verdict, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertEngagement(ctx, tx, eng); err != nil {
		return domain.Engagement{}, verdict, fmt.Errorf("insert engagement: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "engagement.created", "engagement", eng.ID, opts.ActorID, events.EventPayload{
		"member_id":      eng.MemberID,
		"project_id":     eng.ProjectID,
		"hours_per_week": eng.HoursPerWeek,
		"forced":         !verdict.Valid,
	}); err != nil {
		return domain.Engagement{}, verdict, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Engagement{}, verdict, err
	}
	return eng, verdict, nil
}

// EngagementUpdateOptions patch an existing engagement. Nil pointers leave the
// field untouched; ClearEndDate makes the engagement open-ended again.
type EngagementUpdateOptions struct {
	ID           string
	HoursPerWeek *float64
	StartDate    *string
	EndDate      *string
	ClearEndDate bool
	Role         *string
	IsActive     *bool
	ActorID      string
	Force        bool
}

// UpdateEngagement re-validates the edited engagement with itself excluded, so
// the current allocation does not count against its own capacity.
func (e Engine) UpdateEngagement(ctx context.Context, opts EngagementUpdateOptions) (domain.Engagement, capacity.EngagementValidation, error) {
	var verdict capacity.EngagementValidation
	eng, err := e.Repo.GetEngagement(ctx, opts.ID)
	if err != nil {
		return eng, verdict, err
	}
	if opts.HoursPerWeek != nil {
		if *opts.HoursPerWeek <= 0 {
			return eng, verdict, errors.New("hours per week must be positive")
		}
		eng.HoursPerWeek = *opts.HoursPerWeek
	}
	if opts.StartDate != nil {
		eng.StartDate = *opts.StartDate
	}
	if opts.ClearEndDate {
		eng.EndDate = nil
	} else if opts.EndDate != nil {
		eng.EndDate = optionalString(*opts.EndDate)
	}
	if opts.Role != nil {
		eng.Role = *opts.Role
	}
	if opts.IsActive != nil {
		eng.IsActive = *opts.IsActive
	}

	_, data, err := e.memberData(ctx, eng.MemberID)
	if err != nil {
		return eng, verdict, err
	}
	candidate, err := toCapacityEngagement(eng)
	if err != nil {
		return eng, verdict, err
	}
	verdict = capacity.ValidateEngagement(data, candidate, eng.ID, e.policy(), e.now())
	if !verdict.Valid && !opts.Force {
		return eng, verdict, &EngagementRejectedError{Result: verdict}
	}

	eng.UpdatedAt = e.now().UTC().Format(time.RFC3339)
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return eng, verdict, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateEngagement(ctx, tx, eng); err != nil {
		return eng, verdict, err
	}
	if err := e.Events.Append(ctx, tx, "engagement.updated", "engagement", eng.ID, opts.ActorID, events.EventPayload{
		"member_id": eng.MemberID,
		"forced":    !verdict.Valid,
	}); err != nil {
		return eng, verdict, err
	}
	if err := tx.Commit(); err != nil {
		return eng, verdict, err
	}
	return eng, verdict, nil
}

// EndEngagement closes out an engagement: sets its end date (today when
// endDate is empty) and deactivates it. Ending is exempt from capacity
// validation since it only ever frees hours.
func (e Engine) EndEngagement(ctx context.Context, id, endDate, actorID string) (domain.Engagement, error) {
	eng, err := e.Repo.GetEngagement(ctx, id)
	if err != nil {
		return eng, err
	}
	if endDate == "" {
		endDate = e.now().UTC().Format(dateLayout)
	}
	if _, err := parseDate(endDate); err != nil {
		return eng, err
	}
	eng.EndDate = &endDate
	eng.IsActive = false
	eng.UpdatedAt = e.now().UTC().Format(time.RFC3339)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return eng, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateEngagement(ctx, tx, eng); err != nil {
		return eng, err
	}
	if err := e.Events.Append(ctx, tx, "engagement.ended", "engagement", eng.ID, actorID, events.EventPayload{
		"member_id": eng.MemberID,
		"end_date":  endDate,
	}); err != nil {
		return eng, err
	}
	if err := tx.Commit(); err != nil {
		return eng, err
	}
	return eng, nil
}

// ValidateEngagementCandidate runs engagement validation without writing
// anything. excludeID may name an engagement being edited.
func (e Engine) ValidateEngagementCandidate(ctx context.Context, memberID string, candidate domain.Engagement, excludeID string) (capacity.EngagementValidation, error) {
	_, data, err := e.memberData(ctx, memberID)
	if err != nil {
		return capacity.EngagementValidation{}, err
	}
	cand, err := toCapacityEngagement(candidate)
	if err != nil {
		return capacity.EngagementValidation{}, err
	}
	return capacity.ValidateEngagement(data, cand, excludeID, e.policy(), e.now()), nil
}
