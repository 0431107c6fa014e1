package repo

import (
	"context"
	"database/sql"

	"crewplan/internal/domain"
)

const engagementColumns = `id,member_id,project_id,hours_per_week,is_active,start_date,end_date,role,created_at,updated_at`

func scanEngagement(scan func(dest ...any) error) (domain.Engagement, error) {
	var e domain.Engagement
	var active int
	var end, role sql.NullString
	err := scan(&e.ID, &e.MemberID, &e.ProjectID, &e.HoursPerWeek, &active, &e.StartDate, &end, &role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	e.IsActive = active != 0
	if end.Valid {
		e.EndDate = &end.String
	}
	if role.Valid {
		e.Role = role.String
	}
	return e, nil
}

func (r Repo) InsertEngagement(ctx context.Context, tx *sql.Tx, e domain.Engagement) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO engagements(`+engagementColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.MemberID, e.ProjectID, e.HoursPerWeek, boolInt(e.IsActive), e.StartDate, nullablePtr(e.EndDate), nullable(e.Role), e.CreatedAt, e.UpdatedAt)
	return err
}

func (r Repo) UpdateEngagement(ctx context.Context, tx *sql.Tx, e domain.Engagement) error {
	res, err := tx.ExecContext(ctx, `UPDATE engagements SET hours_per_week=?, is_active=?, start_date=?, end_date=?, role=?, updated_at=? WHERE id=?`,
		e.HoursPerWeek, boolInt(e.IsActive), e.StartDate, nullablePtr(e.EndDate), nullable(e.Role), e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) GetEngagement(ctx context.Context, id string) (domain.Engagement, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+engagementColumns+` FROM engagements WHERE id=?`, id)
	e, err := scanEngagement(row.Scan)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

func (r Repo) ListEngagementsByMember(ctx context.Context, memberID string) ([]domain.Engagement, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+engagementColumns+` FROM engagements WHERE member_id=? ORDER BY start_date ASC, id ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Engagement
	for rows.Next() {
		e, err := scanEngagement(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) ListEngagementsByProject(ctx context.Context, projectID string) ([]domain.Engagement, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+engagementColumns+` FROM engagements WHERE project_id=? ORDER BY start_date ASC, id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Engagement
	for rows.Next() {
		e, err := scanEngagement(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
