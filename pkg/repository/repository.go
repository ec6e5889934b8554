package repository

import (
	"context"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	AddMembership(ctx context.Context, userID, committeeID int64) error
	ListMemberships(ctx context.Context, userID int64) ([]int64, error)
	// DeleteUsersExcept removes every user and membership except keepID's.
	DeleteUsersExcept(ctx context.Context, keepID int64) error
}

type CommitteeRepo interface {
	CreateCommittee(ctx context.Context, c *models.Committee) error
	GetCommittees(ctx context.Context, ids []int64) ([]models.Committee, error)
	ListCommittees(ctx context.Context) ([]models.Committee, error)
	SetAcceptsAdmissions(ctx context.Context, id int64, open bool) error
	// CloseAllAdmissions flips accepts_admissions off for every committee.
	CloseAllAdmissions(ctx context.Context) error
}

type ApplicationRepo interface {
	// CreateStatuses bulk-inserts one status per committee and returns the new
	// status ids in committee order. It runs before CreateApplication; if it
	// fails no application row may be created.
	CreateStatuses(ctx context.Context, committeeIDs []int64, value models.StatusValue) ([]int64, error)
	CreateApplication(ctx context.Context, name string, created int64, statusIDs []int64) (int64, error)
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatusValue(ctx context.Context, statusID int64, value models.StatusValue) error
	// ListApplications runs the listing pipeline for the caller's scope and
	// returns the page window plus the total matching count.
	ListApplications(ctx context.Context, scope admission.Scope, q admission.ListQuery) ([]models.Application, int64, error)
	DeleteAllApplications(ctx context.Context) error
	DeleteAllStatuses(ctx context.Context) error
}

type PeriodRepo interface {
	CreatePeriod(ctx context.Context, p *models.AdmissionPeriod) (int64, error)
	// PeriodActiveAt reports whether an admission period covers ts.
	PeriodActiveAt(ctx context.Context, ts int64) (bool, error)
	DeleteAllPeriods(ctx context.Context) error
}
