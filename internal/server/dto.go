package server

import (
	"crewplan/internal/capacity"
	"crewplan/internal/domain"
)

type CreateMemberRequest struct {
	Name                string  `json:"name" minLength:"1"`
	Email               string  `json:"email,omitempty" format:"email"`
	WorkingHoursPerWeek float64 `json:"working_hours_per_week,omitempty" minimum:"0"`
	JoinedAt            string  `json:"joined_at,omitempty" format:"date"`
}

type UpdateMemberRequest struct {
	Name                *string  `json:"name,omitempty"`
	Email               *string  `json:"email,omitempty"`
	WorkingHoursPerWeek *float64 `json:"working_hours_per_week,omitempty" minimum:"0"`
}

type CreateProjectRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" minLength:"1"`
	Description string `json:"description,omitempty"`
}

type CreateEngagementRequest struct {
	MemberID     string  `json:"member_id" minLength:"1"`
	ProjectID    string  `json:"project_id" minLength:"1"`
	HoursPerWeek float64 `json:"hours_per_week" exclusiveMinimum:"0"`
	StartDate    string  `json:"start_date" format:"date"`
	EndDate      string  `json:"end_date,omitempty" format:"date"`
	Role         string  `json:"role,omitempty"`
	Force        bool    `json:"force,omitempty"`
}

type UpdateEngagementRequest struct {
	HoursPerWeek *float64 `json:"hours_per_week,omitempty" exclusiveMinimum:"0"`
	StartDate    *string  `json:"start_date,omitempty" format:"date"`
	EndDate      *string  `json:"end_date,omitempty" format:"date"`
	ClearEndDate bool     `json:"clear_end_date,omitempty"`
	Role         *string  `json:"role,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
	Force        bool     `json:"force,omitempty"`
}

type ValidateEngagementRequest struct {
	MemberID     string  `json:"member_id" minLength:"1"`
	ProjectID    string  `json:"project_id" minLength:"1"`
	HoursPerWeek float64 `json:"hours_per_week" exclusiveMinimum:"0"`
	StartDate    string  `json:"start_date" format:"date"`
	EndDate      string  `json:"end_date,omitempty" format:"date"`

	// ExcludeID names the engagement being edited, if any.
	ExcludeID string `json:"exclude_id,omitempty"`
}

type RequestTimeOffRequest struct {
	MemberID    string `json:"member_id" minLength:"1"`
	Type        string `json:"type" enum:"vacation,parental_leave,sick_leave,paid_time_off,unpaid_time_off,other"`
	StartDate   string `json:"start_date" format:"date"`
	EndDate     string `json:"end_date" format:"date"`
	Description string `json:"description,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

type ValidateTimeOffRequest struct {
	MemberID  string `json:"member_id" minLength:"1"`
	Type      string `json:"type" enum:"vacation,parental_leave,sick_leave,paid_time_off,unpaid_time_off,other"`
	StartDate string `json:"start_date" format:"date"`
	EndDate   string `json:"end_date" format:"date"`
	ExcludeID string `json:"exclude_id,omitempty"`
}

// EngagementResponse carries the written engagement with its validation
// verdict so warnings survive a successful write.
type EngagementResponse struct {
	Engagement domain.Engagement             `json:"engagement"`
	Validation capacity.EngagementValidation `json:"validation"`
}

type TimeOffResponse struct {
	Entry      domain.TimeOffEntry        `json:"entry"`
	Validation capacity.TimeOffValidation `json:"validation"`
}

type ValidationVerdictResponse struct {
	Engagement *capacity.EngagementValidation `json:"engagement,omitempty"`
	TimeOff    *capacity.TimeOffValidation    `json:"time_off,omitempty"`
}

type PeriodAvailabilityResponse struct {
	MemberID  string                 `json:"member_id"`
	StartDate string                 `json:"start_date" format:"date"`
	EndDate   string                 `json:"end_date" format:"date"`
	Summary   capacity.PeriodSummary `json:"summary"`
}

type EventsPageResponse struct {
	Events     []domain.Event `json:"events"`
	NextCursor int64          `json:"next_cursor,omitempty"`
}
