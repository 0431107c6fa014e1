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

var timeOffTypes = map[string]bool{
	string(capacity.TimeOffVacation):      true,
	string(capacity.TimeOffParentalLeave): true,
	string(capacity.TimeOffSickLeave):     true,
	string(capacity.TimeOffPaid):          true,
	string(capacity.TimeOffUnpaid):        true,
	string(capacity.TimeOffOther):         true,
}

// TimeOffRequestOptions are parameters for a new time-off request.
type TimeOffRequestOptions struct {
	ID          string
	MemberID    string
	Type        string
	StartDate   string
	EndDate     string
	Description string
	ActorID     string
	Force       bool
}

// RequestTimeOff records a pending time-off entry after validating it against
// the member's existing entries. Pending overlapping entries block the request
// just like approved ones; forcing writes it anyway.
func (e Engine) RequestTimeOff(ctx context.Context, opts TimeOffRequestOptions) (domain.TimeOffEntry, capacity.TimeOffValidation, error) {
	var verdict capacity.TimeOffValidation
	if !timeOffTypes[opts.Type] {
		return domain.TimeOffEntry{}, verdict, fmt.Errorf("unknown time off type %q", opts.Type)
	}
	if opts.StartDate == "" || opts.EndDate == "" {
		return domain.TimeOffEntry{}, verdict, errors.New("start and end dates are required")
	}
	_, data, err := e.memberData(ctx, opts.MemberID)
	if err != nil {
		return domain.TimeOffEntry{}, verdict, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := e.now().UTC().Format(time.RFC3339)
	entry := domain.TimeOffEntry{
		ID:          id,
		MemberID:    opts.MemberID,
		Type:        opts.Type,
		StartDate:   opts.StartDate,
		EndDate:     opts.EndDate,
		Status:      string(capacity.TimeOffPending),
		Description: opts.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	candidate, err := toCapacityTimeOff(entry)
	if err != nil {
		return domain.TimeOffEntry{}, verdict, err
	}
	verdict = capacity.ValidateTimeOff(data.TimeOff, candidate, "", e.policy())
	if !verdict.Valid && !opts.Force {
		return domain.TimeOffEntry{}, verdict, &TimeOffRejectedError{Result: verdict}
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.TimeOffEntry{}, verdict, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertTimeOff(ctx, tx, entry); err != nil {
		return domain.TimeOffEntry{}, verdict, fmt.Errorf("insert time off: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "timeoff.requested", "timeoff", entry.ID, opts.ActorID, events.EventPayload{
		"member_id":  entry.MemberID,
		"type":       entry.Type,
		"start_date": entry.StartDate,
		"end_date":   entry.EndDate,
		"forced":     !verdict.Valid,
	}); err != nil {
		return domain.TimeOffEntry{}, verdict, err
	}
	if err := tx.Commit(); err != nil {
		return domain.TimeOffEntry{}, verdict, err
	}
	return entry, verdict, nil
}

func ensureTimeOffTransition(from, to string) error {
	switch from {
	case string(capacity.TimeOffPending):
		if to == string(capacity.TimeOffApproved) || to == string(capacity.TimeOffRejected) {
			return nil
		}
	}
	return fmt.Errorf("cannot move time off from %q to %q", from, to)
}

// SetTimeOffStatus resolves a pending request. Only pending entries may move,
// and only to approved or rejected.
func (e Engine) SetTimeOffStatus(ctx context.Context, id, status, actorID string) (domain.TimeOffEntry, error) {
	entry, err := e.Repo.GetTimeOff(ctx, id)
	if err != nil {
		return entry, err
	}
	if err := ensureTimeOffTransition(entry.Status, status); err != nil {
		return entry, err
	}
	updatedAt := e.now().UTC().Format(time.RFC3339)
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return entry, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateTimeOffStatus(ctx, tx, id, status, updatedAt); err != nil {
		return entry, err
	}
	evtType := "timeoff.approved"
	if status == string(capacity.TimeOffRejected) {
		evtType = "timeoff.rejected"
	}
	if err := e.Events.Append(ctx, tx, evtType, "timeoff", id, actorID, events.EventPayload{
		"member_id": entry.MemberID,
		"from":      entry.Status,
		"to":        status,
	}); err != nil {
		return entry, err
	}
	if err := tx.Commit(); err != nil {
		return entry, err
	}
	entry.Status = status
	entry.UpdatedAt = updatedAt
	return entry, nil
}

// ValidateTimeOffCandidate runs time-off validation without writing anything.
func (e Engine) ValidateTimeOffCandidate(ctx context.Context, memberID string, candidate domain.TimeOffEntry, excludeID string) (capacity.TimeOffValidation, error) {
	_, data, err := e.memberData(ctx, memberID)
	if err != nil {
		return capacity.TimeOffValidation{}, err
	}
	cand, err := toCapacityTimeOff(candidate)
	if err != nil {
		return capacity.TimeOffValidation{}, err
	}
	return capacity.ValidateTimeOff(data.TimeOff, cand, excludeID, e.policy()), nil
}
