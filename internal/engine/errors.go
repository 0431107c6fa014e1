package engine

import (
	"strings"

	"crewplan/internal/capacity"
)

// EngagementRejectedError is returned when a proposed engagement fails
// validation and the caller did not force the write. The full verdict rides
// along so surfaces can show every error and warning, not just the first.
type EngagementRejectedError struct {
	Result capacity.EngagementValidation
}

func (e *EngagementRejectedError) Error() string {
	return "engagement rejected: " + strings.Join(e.Result.Errors, "; ")
}

// TimeOffRejectedError is the time-off counterpart of EngagementRejectedError.
type TimeOffRejectedError struct {
	Result capacity.TimeOffValidation
}

func (e *TimeOffRejectedError) Error() string {
	return "time off rejected: " + strings.Join(e.Result.Errors, "; ")
}
