package sqlite

import (
	"context"
	"fmt"

	"github.com/opptakhq/opptak/pkg/models"
)

func (r *SQLiteRepo) CreatePeriod(ctx context.Context, p *models.AdmissionPeriod) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("period is nil")
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO admission_periods (starts_at, ends_at) VALUES (?, ?)`, p.StartsAt, p.EndsAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) PeriodActiveAt(ctx context.Context, ts int64) (bool, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM admission_periods WHERE starts_at <= ? AND ? < ends_at`, ts, ts)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *SQLiteRepo) DeleteAllPeriods(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM admission_periods`)
	return err
}
