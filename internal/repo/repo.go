package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crewplan/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func (r Repo) InsertMember(ctx context.Context, tx *sql.Tx, m domain.Member) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO members(id,name,email,working_hours_per_week,joined_at,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.Name, nullable(m.Email), m.WorkingHoursPerWeek, nullablePtr(m.JoinedAt), m.CreatedAt, m.UpdatedAt)
	return err
}

func (r Repo) GetMember(ctx context.Context, id string) (domain.Member, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,name,COALESCE(email,''),working_hours_per_week,joined_at,created_at,updated_at FROM members WHERE id=?`, id)
	var m domain.Member
	var joined sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.WorkingHoursPerWeek, &joined, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if joined.Valid {
		m.JoinedAt = &joined.String
	}
	return m, err
}

func (r Repo) ListMembers(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,COALESCE(email,''),working_hours_per_week,joined_at,created_at,updated_at FROM members ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Member
	for rows.Next() {
		var m domain.Member
		var joined sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.WorkingHoursPerWeek, &joined, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if joined.Valid {
			m.JoinedAt = &joined.String
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// UpdateMember patches the provided fields; nil pointers are left untouched.
func (r Repo) UpdateMember(ctx context.Context, tx *sql.Tx, id string, name, email *string, workingHours *float64, updatedAt string) error {
	var (
		fields []string
		args   []any
	)
	if name != nil {
		fields = append(fields, "name=?")
		args = append(args, *name)
	}
	if email != nil {
		fields = append(fields, "email=?")
		args = append(args, nullable(*email))
	}
	if workingHours != nil {
		fields = append(fields, "working_hours_per_week=?")
		args = append(args, *workingHours)
	}
	if len(fields) == 0 {
		return nil
	}
	fields = append(fields, "updated_at=?")
	args = append(args, updatedAt, id)
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE members SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) InsertProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO projects(id,name,status,description,created_at) VALUES (?,?,?,?,?)`,
		p.ID, p.Name, p.Status, nullable(p.Description), p.CreatedAt)
	return err
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,name,status,COALESCE(description,''),created_at FROM projects WHERE id=?`, id)
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Status, &p.Description, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

func (r Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,status,COALESCE(description,''),created_at FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullablePtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
