package mock

import (
	"context"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	Users      *UserRepo
	Committees *CommitteeRepo
	Apps       *ApplicationRepo
	Periods    *PeriodRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:      &UserRepo{Memberships: map[int64][]int64{}},
		Committees: &CommitteeRepo{},
		Apps:       &ApplicationRepo{},
		Periods:    &PeriodRepo{},
	}
}

type UserRepo struct {
	Stored      []models.User
	Memberships map[int64][]int64
	GetErr      error
	ListErr     error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) error {
	m.Stored = append(m.Stored, *u)
	return nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			u := m.Stored[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) AddMembership(ctx context.Context, userID, committeeID int64) error {
	m.Memberships[userID] = append(m.Memberships[userID], committeeID)
	return nil
}

func (m *UserRepo) ListMemberships(ctx context.Context, userID int64) ([]int64, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Memberships[userID], nil
}

func (m *UserRepo) DeleteUsersExcept(ctx context.Context, keepID int64) error {
	var kept []models.User
	for _, u := range m.Stored {
		if u.ID == keepID {
			kept = append(kept, u)
		}
	}
	m.Stored = kept
	for id := range m.Memberships {
		if id != keepID {
			delete(m.Memberships, id)
		}
	}
	return nil
}

type CommitteeRepo struct {
	Stored []models.Committee
}

func (m *CommitteeRepo) CreateCommittee(ctx context.Context, c *models.Committee) error {
	m.Stored = append(m.Stored, *c)
	return nil
}

func (m *CommitteeRepo) GetCommittees(ctx context.Context, ids []int64) ([]models.Committee, error) {
	var out []models.Committee
	for _, c := range m.Stored {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (m *CommitteeRepo) ListCommittees(ctx context.Context) ([]models.Committee, error) {
	return m.Stored, nil
}

func (m *CommitteeRepo) SetAcceptsAdmissions(ctx context.Context, id int64, open bool) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored[i].AcceptsAdmissions = open
		}
	}
	return nil
}

func (m *CommitteeRepo) CloseAllAdmissions(ctx context.Context) error {
	for i := range m.Stored {
		m.Stored[i].AcceptsAdmissions = false
	}
	return nil
}

type ApplicationRepo struct {
	Stored            []models.Application
	Statuses          []models.Status
	CreateStatusesErr error
	CreateAppErr      error
	nextStatusID      int64
	nextAppID         int64
}

func (m *ApplicationRepo) CreateStatuses(ctx context.Context, committeeIDs []int64, value models.StatusValue) ([]int64, error) {
	if m.CreateStatusesErr != nil {
		return nil, m.CreateStatusesErr
	}
	ids := make([]int64, 0, len(committeeIDs))
	for _, cid := range committeeIDs {
		m.nextStatusID++
		m.Statuses = append(m.Statuses, models.Status{ID: m.nextStatusID, CommitteeID: cid, Value: value})
		ids = append(ids, m.nextStatusID)
	}
	return ids, nil
}

func (m *ApplicationRepo) CreateApplication(ctx context.Context, name string, created int64, statusIDs []int64) (int64, error) {
	if m.CreateAppErr != nil {
		return 0, m.CreateAppErr
	}
	m.nextAppID++
	app := models.Application{ID: m.nextAppID, Name: name, Created: created}
	for _, sid := range statusIDs {
		for _, s := range m.Statuses {
			if s.ID == sid {
				app.Statuses = append(app.Statuses, s)
				app.Committees = append(app.Committees, models.CommitteeRef{ID: s.CommitteeID})
			}
		}
	}
	m.Stored = append(m.Stored, app)
	return app.ID, nil
}

func (m *ApplicationRepo) UpdateStatusValue(ctx context.Context, statusID int64, value models.StatusValue) error {
	for i := range m.Statuses {
		if m.Statuses[i].ID == statusID {
			m.Statuses[i].Value = value
		}
	}
	for i := range m.Stored {
		for j := range m.Stored[i].Statuses {
			if m.Stored[i].Statuses[j].ID == statusID {
				m.Stored[i].Statuses[j].Value = value
			}
		}
	}
	return nil
}

func (m *ApplicationRepo) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			a := m.Stored[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *ApplicationRepo) ListApplications(ctx context.Context, scope admission.Scope, q admission.ListQuery) ([]models.Application, int64, error) {
	return m.Stored, int64(len(m.Stored)), nil
}

func (m *ApplicationRepo) DeleteAllApplications(ctx context.Context) error {
	m.Stored = nil
	return nil
}

func (m *ApplicationRepo) DeleteAllStatuses(ctx context.Context) error {
	m.Statuses = nil
	return nil
}

type PeriodRepo struct {
	Stored    []models.AdmissionPeriod
	ActiveErr error
	nextID    int64
}

func (m *PeriodRepo) CreatePeriod(ctx context.Context, p *models.AdmissionPeriod) (int64, error) {
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.Stored = append(m.Stored, cp)
	return cp.ID, nil
}

func (m *PeriodRepo) PeriodActiveAt(ctx context.Context, ts int64) (bool, error) {
	if m.ActiveErr != nil {
		return false, m.ActiveErr
	}
	for _, p := range m.Stored {
		if p.StartsAt <= ts && ts < p.EndsAt {
			return true, nil
		}
	}
	return false, nil
}

func (m *PeriodRepo) DeleteAllPeriods(ctx context.Context) error {
	m.Stored = nil
	return nil
}
