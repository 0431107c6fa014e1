package domain

type Member struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Email               string  `json:"email,omitempty"`
	WorkingHoursPerWeek float64 `json:"working_hours_per_week"`
	JoinedAt            *string `json:"joined_at,omitempty" format:"date"`
	CreatedAt           string  `json:"created_at" format:"date-time"`
	UpdatedAt           string  `json:"updated_at" format:"date-time"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status" enum:"active,paused,archived"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type Engagement struct {
	ID           string  `json:"id"`
	MemberID     string  `json:"member_id"`
	ProjectID    string  `json:"project_id"`
	HoursPerWeek float64 `json:"hours_per_week"`
	IsActive     bool    `json:"is_active"`
	StartDate    string  `json:"start_date" format:"date"`
	EndDate      *string `json:"end_date,omitempty" format:"date"`
	Role         string  `json:"role,omitempty"`
	CreatedAt    string  `json:"created_at" format:"date-time"`
	UpdatedAt    string  `json:"updated_at" format:"date-time"`
}

type TimeOffEntry struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	Type        string `json:"type" enum:"vacation,parental_leave,sick_leave,paid_time_off,unpaid_time_off,other"`
	StartDate   string `json:"start_date" format:"date"`
	EndDate     string `json:"end_date" format:"date"`
	Status      string `json:"status" enum:"pending,approved,rejected"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
