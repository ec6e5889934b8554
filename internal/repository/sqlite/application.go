package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/pkg/models"
)

// CreateStatuses bulk-inserts one status per addressed committee in a single
// statement and returns the new ids in committee order. Statuses are created
// before the application that will reference them; a failure here means no
// application row exists yet.
func (r *SQLiteRepo) CreateStatuses(ctx context.Context, committeeIDs []int64, value models.StatusValue) ([]int64, error) {
	if len(committeeIDs) == 0 {
		return nil, fmt.Errorf("no committees")
	}
	created := now()

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`INSERT INTO statuses (committee_id, value, created) VALUES `)
	for i, cid := range committeeIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, cid, string(value), created)
	}
	res, err := r.conn.Exec(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	last, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// sqlite assigns sequential rowids for a multi-row insert
	ids := make([]int64, len(committeeIDs))
	for i := range ids {
		ids[i] = last - int64(len(ids)) + int64(i) + 1
	}
	return ids, nil
}

func (r *SQLiteRepo) CreateApplication(ctx context.Context, name string, created int64, statusIDs []int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `INSERT INTO applications (name, created) VALUES (?, ?)`, name, created)
	if err != nil {
		return 0, err
	}
	appID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, sid := range statusIDs {
		if _, err := r.conn.Exec(ctx, `INSERT INTO application_statuses (application_id, status_id) VALUES (?, ?)`, appID, sid); err != nil {
			return 0, err
		}
	}
	return appID, nil
}

func (r *SQLiteRepo) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, created FROM applications WHERE id = ?`, id)
	var a models.Application
	if err := row.Scan(&a.ID, &a.Name, &a.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	apps := []models.Application{a}
	if err := r.hydrateApplications(ctx, apps); err != nil {
		return nil, err
	}
	return &apps[0], nil
}

// buildListSQL renders the listing pipeline as one windowed SELECT. Stage
// order is fixed: visibility scope, name filter, status/committee filter,
// sort, page window. The total matching count rides along as a window
// aggregate so the page and the count come from a single pass.
func buildListSQL(scope admission.Scope, q admission.ListQuery) (string, []any) {
	var (
		where []string
		args  []any
	)

	switch scope.Role {
	case admission.RoleElection:
		// no scope restriction
	case admission.RoleMainBoard:
		where = append(where, `EXISTS (SELECT 1 FROM application_statuses l JOIN statuses s ON s.id = l.status_id WHERE l.application_id = a.id AND s.committee_id != ?)`)
		args = append(args, scope.Sentinels.MainBoard)
	default:
		if len(scope.Committees) == 0 {
			where = append(where, `0 = 1`)
			break
		}
		where = append(where, `EXISTS (SELECT 1 FROM application_statuses l JOIN statuses s ON s.id = l.status_id WHERE l.application_id = a.id AND s.committee_id IN (`+placeholders(len(scope.Committees))+`))`)
		args = append(args, int64Args(scope.Committees)...)
	}

	if q.Name != "" {
		where = append(where, `instr(lower(a.name), lower(?)) > 0`)
		args = append(args, q.Name)
	}

	switch {
	case len(q.Committees) > 0 && q.Status != "":
		// conjunctive: one status entry must satisfy both conditions
		where = append(where, `EXISTS (SELECT 1 FROM application_statuses l JOIN statuses s ON s.id = l.status_id WHERE l.application_id = a.id AND s.committee_id IN (`+placeholders(len(q.Committees))+`) AND s.value = ?)`)
		args = append(args, int64Args(q.Committees)...)
		args = append(args, string(q.Status))
	case q.Status != "":
		where = append(where, `EXISTS (SELECT 1 FROM application_statuses l JOIN statuses s ON s.id = l.status_id WHERE l.application_id = a.id AND s.value = ?)`)
		args = append(args, string(q.Status))
	case len(q.Committees) > 0:
		where = append(where, `EXISTS (SELECT 1 FROM application_statuses l JOIN statuses s ON s.id = l.status_id WHERE l.application_id = a.id AND s.committee_id IN (`+placeholders(len(q.Committees))+`))`)
		args = append(args, int64Args(q.Committees)...)
	}

	sql := `SELECT a.id, a.name, a.created, COUNT(*) OVER () AS total FROM applications a`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}

	switch q.Sort {
	case admission.SortNameAsc:
		sql += ` ORDER BY a.name COLLATE NOCASE ASC`
	case admission.SortNameDesc:
		sql += ` ORDER BY a.name COLLATE NOCASE DESC`
	case admission.SortDateAsc:
		sql += ` ORDER BY a.created ASC`
	case admission.SortDateDesc:
		sql += ` ORDER BY a.created DESC`
	}

	sql += ` LIMIT ? OFFSET ?`
	args = append(args, admission.PageSize, admission.Offset(q.Page))
	return sql, args
}

// ListApplications executes the listing pipeline and hydrates the page window
// with committee and status entries. The second return value is the total
// matching count before pagination.
func (r *SQLiteRepo) ListApplications(ctx context.Context, scope admission.Scope, q admission.ListQuery) ([]models.Application, int64, error) {
	query, args := buildListSQL(scope, q)
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		apps  []models.Application
		total int64
	)
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.Name, &a.Created, &total); err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.hydrateApplications(ctx, apps); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// hydrateApplications attaches committee refs and status entries to each
// application, in submission order. Both slices come from the same joined
// status rows, keeping them aligned on the committee key.
func (r *SQLiteRepo) hydrateApplications(ctx context.Context, apps []models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]int64, len(apps))
	byID := make(map[int64]*models.Application, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
		byID[apps[i].ID] = &apps[i]
	}

	q := `SELECT l.application_id, s.id, s.committee_id, s.value, s.created, c.name, c.slug
		FROM application_statuses l
		JOIN statuses s ON s.id = l.status_id
		JOIN committees c ON c.id = s.committee_id
		WHERE l.application_id IN (` + placeholders(len(ids)) + `)
		ORDER BY l.application_id, s.id`
	rows, err := r.conn.QueryRows(ctx, q, int64Args(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			appID int64
			s     models.Status
			value string
			name  string
			slug  string
		)
		if err := rows.Scan(&appID, &s.ID, &s.CommitteeID, &value, &s.Created, &name, &slug); err != nil {
			return err
		}
		s.Value = models.StatusValue(value)
		app := byID[appID]
		if app == nil {
			continue
		}
		app.Committees = append(app.Committees, models.CommitteeRef{ID: s.CommitteeID, Name: name, Slug: slug})
		app.Statuses = append(app.Statuses, s)
	}
	return rows.Err()
}

func (r *SQLiteRepo) UpdateStatusValue(ctx context.Context, statusID int64, value models.StatusValue) error {
	res, err := r.conn.Exec(ctx, `UPDATE statuses SET value = ? WHERE id = ?`, string(value), statusID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("status %d not found", statusID)
	}
	return nil
}

func (r *SQLiteRepo) DeleteAllApplications(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM application_statuses`); err != nil {
		return err
	}
	_, err := r.conn.Exec(ctx, `DELETE FROM applications`)
	return err
}

func (r *SQLiteRepo) DeleteAllStatuses(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM statuses`)
	return err
}
