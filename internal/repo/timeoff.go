package repo

import (
	"context"
	"database/sql"

	"crewplan/internal/domain"
)

const timeOffColumns = `id,member_id,type,start_date,end_date,status,description,created_at,updated_at`

func scanTimeOff(scan func(dest ...any) error) (domain.TimeOffEntry, error) {
	var e domain.TimeOffEntry
	var desc sql.NullString
	err := scan(&e.ID, &e.MemberID, &e.Type, &e.StartDate, &e.EndDate, &e.Status, &desc, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	if desc.Valid {
		e.Description = desc.String
	}
	return e, nil
}

func (r Repo) InsertTimeOff(ctx context.Context, tx *sql.Tx, e domain.TimeOffEntry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO time_off_entries(`+timeOffColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ID, e.MemberID, e.Type, e.StartDate, e.EndDate, e.Status, nullable(e.Description), e.CreatedAt, e.UpdatedAt)
	return err
}

func (r Repo) GetTimeOff(ctx context.Context, id string) (domain.TimeOffEntry, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+timeOffColumns+` FROM time_off_entries WHERE id=?`, id)
	e, err := scanTimeOff(row.Scan)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

func (r Repo) UpdateTimeOffStatus(ctx context.Context, tx *sql.Tx, id, status, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE time_off_entries SET status=?, updated_at=? WHERE id=?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListTimeOffByMember(ctx context.Context, memberID string) ([]domain.TimeOffEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+timeOffColumns+` FROM time_off_entries WHERE member_id=? ORDER BY start_date ASC, id ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TimeOffEntry
	for rows.Next() {
		e, err := scanTimeOff(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
