// Package capacity computes member availability and validates proposed
// engagements and time-off entries. Everything in this package is a pure
// function over caller-supplied data: no storage, no clock reads, no side
// effects. Callers capture "now" once and pass it in.
package capacity

import "time"

type TimeOffType string

const (
	TimeOffVacation      TimeOffType = "vacation"
	TimeOffParentalLeave TimeOffType = "parental_leave"
	TimeOffSickLeave     TimeOffType = "sick_leave"
	TimeOffPaid          TimeOffType = "paid_time_off"
	TimeOffUnpaid        TimeOffType = "unpaid_time_off"
	TimeOffOther         TimeOffType = "other"
)

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffRejected TimeOffStatus = "rejected"
)

// Engagement is a member's weekly time allocation to one project.
// A nil EndDate means the engagement is open-ended.
type Engagement struct {
	ID           string     `json:"id,omitempty"`
	ProjectID    string     `json:"project_id"`
	HoursPerWeek float64    `json:"hours_per_week"`
	IsActive     bool       `json:"is_active"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Role         string     `json:"role,omitempty"`
}

// TimeOffEntry is a period a member is unavailable. EndDate is inclusive.
// Only approved entries reduce availability.
type TimeOffEntry struct {
	ID          string        `json:"id,omitempty"`
	Type        TimeOffType   `json:"type"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Status      TimeOffStatus `json:"status"`
	Description string        `json:"description,omitempty"`
}

// MemberData is the aggregate input to all calculations: a transient view the
// caller assembles from storage. The package never retains it.
type MemberData struct {
	WorkingHoursPerWeek float64
	Engagements         []Engagement
	TimeOff             []TimeOffEntry
	JoinedAt            *time.Time
}

// Policy carries the business-policy constants. These are product decisions,
// not algorithmic necessity, so they are injected rather than hard-coded.
type Policy struct {
	MaxAnnualVacationDays int     `json:"max_annual_vacation_days" yaml:"max_annual_vacation_days"`
	WarnUtilizationPct    float64 `json:"warn_utilization_pct" yaml:"warn_utilization_pct"`
	UpcomingWindowDays    int     `json:"upcoming_window_days" yaml:"upcoming_window_days"`
	MaxFutureYears        int     `json:"max_future_years" yaml:"max_future_years"`
	WorkweekDays          int     `json:"workweek_days" yaml:"workweek_days"`
}

// DefaultPolicy returns the stock policy: 25 vacation days/year, warn above
// 90% utilization, 30-day upcoming window, 10-year end-date sanity bound,
// 5-day work week.
func DefaultPolicy() Policy {
	return Policy{
		MaxAnnualVacationDays: 25,
		WarnUtilizationPct:    90,
		UpcomingWindowDays:    30,
		MaxFutureYears:        10,
		WorkweekDays:          5,
	}
}

func (p Policy) workweek() float64 {
	if p.WorkweekDays <= 0 {
		return 5
	}
	return float64(p.WorkweekDays)
}

// Availability is the point-in-time utilization snapshot for one member.
type Availability struct {
	EngagedHours         float64        `json:"engaged_hours"`
	AvailableHours       float64        `json:"available_hours"`
	UtilizationPct       float64        `json:"utilization_pct"`
	TimeOffDaysThisMonth int            `json:"time_off_days_this_month"`
	TimeOffDaysThisYear  int            `json:"time_off_days_this_year"`
	IsCurrentlyOnTimeOff bool           `json:"is_currently_on_time_off"`
	UpcomingTimeOff      []TimeOffEntry `json:"upcoming_time_off,omitempty"`
}

// PeriodSummary is availability scoped to an explicit date range.
type PeriodSummary struct {
	WorkingDays             int     `json:"working_days"`
	TotalHours              float64 `json:"total_hours"`
	EngagedHours            float64 `json:"engaged_hours"`
	TimeOffDays             int     `json:"time_off_days"`
	EffectiveAvailableHours float64 `json:"effective_available_hours"`
}

// EngagementValidation is the verdict on a proposed engagement. Business-rule
// failures land in Errors/Warnings; the function itself never fails.
// AvailableHours is deliberately unclamped so an over-capacity message can
// state how far over the member already is.
type EngagementValidation struct {
	Valid                  bool         `json:"valid"`
	Errors                 []string     `json:"errors"`
	Warnings               []string     `json:"warnings"`
	AvailableHours         float64      `json:"available_hours"`
	ConflictingEngagements []Engagement `json:"conflicting_engagements"`
}

// TimeOffValidation is the verdict on a proposed time-off entry.
type TimeOffValidation struct {
	Valid              bool           `json:"valid"`
	Errors             []string       `json:"errors"`
	Warnings           []string       `json:"warnings"`
	ConflictingEntries []TimeOffEntry `json:"conflicting_entries"`
}
