package crewplansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Crewplan HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Member represents the API member model.
type Member struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Email               string  `json:"email,omitempty"`
	WorkingHoursPerWeek float64 `json:"working_hours_per_week"`
	JoinedAt            *string `json:"joined_at,omitempty"`
}

// Engagement represents an allocation of a member to a project.
type Engagement struct {
	ID           string  `json:"id"`
	MemberID     string  `json:"member_id"`
	ProjectID    string  `json:"project_id"`
	HoursPerWeek float64 `json:"hours_per_week"`
	IsActive     bool    `json:"is_active"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
	Role         string  `json:"role,omitempty"`
}

// TimeOffEntry represents a time-off period.
type TimeOffEntry struct {
	ID        string `json:"id"`
	MemberID  string `json:"member_id"`
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

// Validation is the verdict attached to engagement and time-off writes.
type Validation struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	AvailableHours float64  `json:"available_hours,omitempty"`
}

// Availability is the point-in-time utilization snapshot.
type Availability struct {
	EngagedHours         float64 `json:"engaged_hours"`
	AvailableHours       float64 `json:"available_hours"`
	UtilizationPct       float64 `json:"utilization_pct"`
	TimeOffDaysThisMonth int     `json:"time_off_days_this_month"`
	TimeOffDaysThisYear  int     `json:"time_off_days_this_year"`
	IsCurrentlyOnTimeOff bool    `json:"is_currently_on_time_off"`
}

// MemberAvailability pairs a member with their snapshot.
type MemberAvailability struct {
	Member       Member       `json:"member"`
	Availability Availability `json:"availability"`
}

// PeriodSummary is availability over an explicit date range.
type PeriodSummary struct {
	WorkingDays             int     `json:"working_days"`
	TotalHours              float64 `json:"total_hours"`
	EngagedHours            float64 `json:"engaged_hours"`
	TimeOffDays             int     `json:"time_off_days"`
	EffectiveAvailableHours float64 `json:"effective_available_hours"`
}

// Event represents a log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// PaginatedEvents wraps event listings with a cursor.
type PaginatedEvents struct {
	Events     []Event `json:"events"`
	NextCursor int64   `json:"next_cursor"`
}

// CreateMember creates a member.
func (c *Client) CreateMember(ctx context.Context, name string, workingHoursPerWeek float64) (Member, error) {
	body := map[string]any{
		"name":                   name,
		"working_hours_per_week": workingHoursPerWeek,
	}
	var resp Member
	err := c.do(ctx, http.MethodPost, "v0/members", body, &resp)
	return resp, err
}

// ListMembers returns all members.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var resp []Member
	err := c.do(ctx, http.MethodGet, "v0/members", nil, &resp)
	return resp, err
}

// CreateEngagement allocates a member to a project. force commits even when
// validation fails; the verdict is returned either way.
func (c *Client) CreateEngagement(ctx context.Context, memberID, projectID string, hoursPerWeek float64, startDate, endDate string, force bool) (Engagement, Validation, error) {
	body := map[string]any{
		"member_id":      memberID,
		"project_id":     projectID,
		"hours_per_week": hoursPerWeek,
		"start_date":     startDate,
		"force":          force,
	}
	if endDate != "" {
		body["end_date"] = endDate
	}
	var resp struct {
		Engagement Engagement `json:"engagement"`
		Validation Validation `json:"validation"`
	}
	err := c.do(ctx, http.MethodPost, "v0/engagements", body, &resp)
	return resp.Engagement, resp.Validation, err
}

// EndEngagement closes out an engagement.
func (c *Client) EndEngagement(ctx context.Context, engagementID, endDate string) (Engagement, error) {
	body := map[string]any{}
	if endDate != "" {
		body["end_date"] = endDate
	}
	var resp Engagement
	endpoint := fmt.Sprintf("v0/engagements/%s/end", url.PathEscape(engagementID))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// ValidateEngagement checks a candidate allocation without writing it.
func (c *Client) ValidateEngagement(ctx context.Context, memberID, projectID string, hoursPerWeek float64, startDate string) (Validation, error) {
	body := map[string]any{
		"member_id":      memberID,
		"project_id":     projectID,
		"hours_per_week": hoursPerWeek,
		"start_date":     startDate,
	}
	var resp struct {
		Engagement Validation `json:"engagement"`
	}
	err := c.do(ctx, http.MethodPost, "v0/engagements/validate", body, &resp)
	return resp.Engagement, err
}

// RequestTimeOff records a pending time-off entry.
func (c *Client) RequestTimeOff(ctx context.Context, memberID, entryType, startDate, endDate string, force bool) (TimeOffEntry, Validation, error) {
	body := map[string]any{
		"member_id":  memberID,
		"type":       entryType,
		"start_date": startDate,
		"end_date":   endDate,
		"force":      force,
	}
	var resp struct {
		Entry      TimeOffEntry `json:"entry"`
		Validation Validation   `json:"validation"`
	}
	err := c.do(ctx, http.MethodPost, "v0/timeoff", body, &resp)
	return resp.Entry, resp.Validation, err
}

// SetTimeOffStatus approves or rejects a pending entry.
func (c *Client) SetTimeOffStatus(ctx context.Context, entryID, status string) (TimeOffEntry, error) {
	var resp TimeOffEntry
	endpoint := fmt.Sprintf("v0/timeoff/%s/status", url.PathEscape(entryID))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"status": status}, &resp)
	return resp, err
}

// MemberAvailability returns a member's snapshot.
func (c *Client) MemberAvailability(ctx context.Context, memberID string) (MemberAvailability, error) {
	var resp MemberAvailability
	endpoint := fmt.Sprintf("v0/members/%s/availability", url.PathEscape(memberID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// MemberPeriodAvailability returns availability over a date range.
func (c *Client) MemberPeriodAvailability(ctx context.Context, memberID, startDate, endDate string) (PeriodSummary, error) {
	var resp struct {
		Summary PeriodSummary `json:"summary"`
	}
	endpoint := fmt.Sprintf("v0/members/%s/availability/period?start_date=%s&end_date=%s",
		url.PathEscape(memberID), url.QueryEscape(startDate), url.QueryEscape(endDate))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Summary, err
}

// TeamAvailability returns the snapshot for every member.
func (c *Client) TeamAvailability(ctx context.Context) ([]MemberAvailability, error) {
	var resp []MemberAvailability
	err := c.do(ctx, http.MethodGet, "v0/team/availability", nil, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	page, err := c.EventsPage(ctx, limit, 0)
	return page.Events, err
}

// EventsPage returns a paginated event listing.
func (c *Client) EventsPage(ctx context.Context, limit int, cursor int64) (PaginatedEvents, error) {
	endpoint := "v0/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	if cursor > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint = fmt.Sprintf("%s%scursor=%d", endpoint, sep, cursor)
	}
	var resp PaginatedEvents
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
