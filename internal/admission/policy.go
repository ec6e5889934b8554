package admission

import (
	"github.com/opptakhq/opptak/pkg/apperr"
	"github.com/opptakhq/opptak/pkg/models"
)

// Authorize decides whether the caller may see an application addressed to
// the given committees at all. What the caller then sees of it is Redact's
// job. The forbidden messages deliberately say nothing about committees the
// caller cannot observe.
func Authorize(scope Scope, addressed []int64) error {
	switch scope.Role {
	case RoleElection:
		return nil
	case RoleMainBoard:
		// Applications addressed only to the main board are reserved for the
		// election committee.
		for _, id := range addressed {
			if id != scope.Sentinels.MainBoard {
				return nil
			}
		}
		return apperr.New(apperr.KindForbidden, "you do not have access to this application")
	default:
		for _, id := range addressed {
			if id == scope.Sentinels.MainBoard {
				continue
			}
			if scope.IsMember(id) {
				return nil
			}
		}
		return apperr.New(apperr.KindForbidden, "you do not have access to this application")
	}
}

// Redact removes every main-board entry from the application's committees and
// statuses for non-election callers. Both slices are filtered on the
// committee id carried by each entry, so they cannot fall out of step.
func Redact(scope Scope, app *models.Application) {
	if scope.Role == RoleElection {
		return
	}
	mb := scope.Sentinels.MainBoard

	committees := make([]models.CommitteeRef, 0, len(app.Committees))
	for _, c := range app.Committees {
		if c.ID != mb {
			committees = append(committees, c)
		}
	}
	statuses := make([]models.Status, 0, len(app.Statuses))
	for _, s := range app.Statuses {
		if s.CommitteeID != mb {
			statuses = append(statuses, s)
		}
	}
	app.Committees = committees
	app.Statuses = statuses
}
