package sqlite

import (
	"context"
	"fmt"

	"github.com/opptakhq/opptak/pkg/models"
)

func (r *SQLiteRepo) CreateCommittee(ctx context.Context, c *models.Committee) error {
	if c == nil {
		return fmt.Errorf("committee is nil")
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO committees (id, name, slug, accepts_admissions) VALUES (?, ?, ?, ?)`, c.ID, c.Name, c.Slug, c.AcceptsAdmissions)
	return err
}

func (r *SQLiteRepo) GetCommittees(ctx context.Context, ids []int64) ([]models.Committee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT id, name, slug, accepts_admissions FROM committees WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	rows, err := r.conn.QueryRows(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Committee
	for rows.Next() {
		var c models.Committee
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.AcceptsAdmissions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListCommittees(ctx context.Context) ([]models.Committee, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, slug, accepts_admissions FROM committees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Committee
	for rows.Next() {
		var c models.Committee
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.AcceptsAdmissions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) SetAcceptsAdmissions(ctx context.Context, id int64, open bool) error {
	_, err := r.conn.Exec(ctx, `UPDATE committees SET accepts_admissions = ? WHERE id = ?`, open, id)
	return err
}

func (r *SQLiteRepo) CloseAllAdmissions(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `UPDATE committees SET accepts_admissions = 0`)
	return err
}
