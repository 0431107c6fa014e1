package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crewplan/internal/config"
	"crewplan/internal/domain"
	"crewplan/internal/events"
	"crewplan/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// MemberCreateOptions are parameters for creating a member.
type MemberCreateOptions struct {
	ID                  string
	Name                string
	Email               string
	WorkingHoursPerWeek float64
	JoinedAt            string
	ActorID             string
}

func (e Engine) CreateMember(ctx context.Context, opts MemberCreateOptions) (domain.Member, error) {
	if e.Config == nil {
		return domain.Member{}, errors.New("config not loaded")
	}
	if strings.TrimSpace(opts.Name) == "" {
		return domain.Member{}, errors.New("name is required")
	}
	if opts.WorkingHoursPerWeek < 0 {
		return domain.Member{}, errors.New("working hours must not be negative")
	}
	if opts.WorkingHoursPerWeek == 0 {
		opts.WorkingHoursPerWeek = e.Config.Team.DefaultWorkingHoursPerWeek
	}
	if opts.JoinedAt != "" {
		if _, err := parseDate(opts.JoinedAt); err != nil {
			return domain.Member{}, fmt.Errorf("joined_at: %w", err)
		}
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := e.now().UTC().Format(time.RFC3339)
	m := domain.Member{
		ID:                  id,
		Name:                opts.Name,
		Email:               opts.Email,
		WorkingHoursPerWeek: opts.WorkingHoursPerWeek,
		JoinedAt:            optionalString(opts.JoinedAt),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Member{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertMember(ctx, tx, m); err != nil {
		return domain.Member{}, fmt.Errorf("insert member: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "member.created", "member", m.ID, opts.ActorID, events.EventPayload{
		"name":                   m.Name,
		"working_hours_per_week": m.WorkingHoursPerWeek,
	}); err != nil {
		return domain.Member{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}

// MemberUpdateOptions encapsulates allowed member updates.
type MemberUpdateOptions struct {
	ID                  string
	Name                *string
	Email               *string
	WorkingHoursPerWeek *float64
	ActorID             string
}

func (e Engine) UpdateMember(ctx context.Context, opts MemberUpdateOptions) (domain.Member, error) {
	m, err := e.Repo.GetMember(ctx, opts.ID)
	if err != nil {
		return m, err
	}
	if opts.WorkingHoursPerWeek != nil && *opts.WorkingHoursPerWeek < 0 {
		return m, errors.New("working hours must not be negative")
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return m, err
	}
	defer tx.Rollback()
	updatedAt := e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.UpdateMember(ctx, tx, opts.ID, opts.Name, opts.Email, opts.WorkingHoursPerWeek, updatedAt); err != nil {
		return m, err
	}
	if err := e.Events.Append(ctx, tx, "member.updated", "member", opts.ID, opts.ActorID, events.EventPayload{}); err != nil {
		return m, err
	}
	if err := tx.Commit(); err != nil {
		return m, err
	}
	return e.Repo.GetMember(ctx, opts.ID)
}

func (e Engine) CreateProject(ctx context.Context, id, name, description, actorID string) (domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Project{}, errors.New("name is required")
	}
	if id == "" {
		id = uuid.New().String()
	}
	p := domain.Project{
		ID:          id,
		Name:        name,
		Status:      "active",
		Description: description,
		CreatedAt:   e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertProject(ctx, tx, p); err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "project.created", "project", p.ID, actorID, events.EventPayload{"name": p.Name}); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// --- helpers ---

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
