package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opptakhq/opptak/pkg/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO users (id, name, password_hash) VALUES (?, ?, ?)`, u.ID, u.Name, u.PasswordHash)
	return err
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, password_hash FROM users WHERE id = ?`, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteRepo) AddMembership(ctx context.Context, userID, committeeID int64) error {
	_, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO memberships (user_id, committee_id) VALUES (?, ?)`, userID, committeeID)
	return err
}

func (r *SQLiteRepo) ListMemberships(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT committee_id FROM memberships WHERE user_id = ? ORDER BY committee_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteUsersExcept(ctx context.Context, keepID int64) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM memberships WHERE user_id != ?`, keepID); err != nil {
		return err
	}
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id != ?`, keepID)
	return err
}
