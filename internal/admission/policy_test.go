package admission_test

import (
	"testing"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/pkg/apperr"
	"github.com/opptakhq/opptak/pkg/models"
)

var sentinels = admission.Sentinels{ElectionCommittee: 1, MainBoard: 2}

func TestScopeFor(t *testing.T) {
	cases := []struct {
		name        string
		memberships []int64
		want        admission.Role
	}{
		{name: "Election", memberships: []int64{1}, want: admission.RoleElection},
		{name: "MainBoard", memberships: []int64{2}, want: admission.RoleMainBoard},
		{name: "Ordinary", memberships: []int64{5, 7}, want: admission.RoleOrdinary},
		{name: "Empty", memberships: nil, want: admission.RoleOrdinary},
		{name: "ElectionWinsOverMainBoard", memberships: []int64{2, 1}, want: admission.RoleElection},
		{name: "MainBoardPlusOrdinary", memberships: []int64{7, 2}, want: admission.RoleMainBoard},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := admission.ScopeFor(sentinels, c.memberships)
			if got.Role != c.want {
				t.Fatalf("role: want %v got %v", c.want, got.Role)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name        string
		memberships []int64
		addressed   []int64
		wantAllowed bool
	}{
		{name: "ElectionSeesEverything", memberships: []int64{1}, addressed: []int64{2}, wantAllowed: true},
		{name: "MainBoardSeesMixed", memberships: []int64{2}, addressed: []int64{2, 7}, wantAllowed: true},
		{name: "MainBoardDeniedBoardOnly", memberships: []int64{2}, addressed: []int64{2}, wantAllowed: false},
		{name: "OrdinaryIntersects", memberships: []int64{7}, addressed: []int64{7, 9}, wantAllowed: true},
		{name: "OrdinaryDisjoint", memberships: []int64{7}, addressed: []int64{9}, wantAllowed: false},
		{name: "OrdinaryOnlyBoardEntry", memberships: []int64{7}, addressed: []int64{2}, wantAllowed: false},
		{name: "NoMemberships", memberships: nil, addressed: []int64{7}, wantAllowed: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			scope := admission.ScopeFor(sentinels, c.memberships)
			err := admission.Authorize(scope, c.addressed)
			if c.wantAllowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !c.wantAllowed {
				if err == nil {
					t.Fatalf("expected forbidden, got access")
				}
				if apperr.KindOf(err) != apperr.KindForbidden {
					t.Fatalf("expected forbidden kind, got %v", apperr.KindOf(err))
				}
			}
		})
	}
}

func buildApp(committees ...int64) *models.Application {
	app := &models.Application{ID: 1, Name: "Ada"}
	for i, cid := range committees {
		app.Committees = append(app.Committees, models.CommitteeRef{ID: cid})
		app.Statuses = append(app.Statuses, models.Status{ID: int64(100 + i), CommitteeID: cid, Value: models.StatusPending})
	}
	return app
}

func TestRedactKeepsEntriesAligned(t *testing.T) {
	// main board sits in the middle; both slices must lose exactly that entry
	app := buildApp(7, 2, 9)
	scope := admission.ScopeFor(sentinels, []int64{7})

	admission.Redact(scope, app)

	if len(app.Committees) != 2 || len(app.Statuses) != 2 {
		t.Fatalf("expected 2 entries each, got %d committees and %d statuses", len(app.Committees), len(app.Statuses))
	}
	for i := range app.Statuses {
		if app.Statuses[i].CommitteeID != app.Committees[i].ID {
			t.Fatalf("entry %d misaligned: status committee %d vs committee %d", i, app.Statuses[i].CommitteeID, app.Committees[i].ID)
		}
	}
	if app.Committees[0].ID != 7 || app.Committees[1].ID != 9 {
		t.Fatalf("unexpected committees after redaction: %+v", app.Committees)
	}
	if app.Statuses[0].ID != 100 || app.Statuses[1].ID != 102 {
		t.Fatalf("unexpected statuses after redaction: %+v", app.Statuses)
	}
}

func TestRedactElectionUntouched(t *testing.T) {
	app := buildApp(2, 7)
	scope := admission.ScopeFor(sentinels, []int64{1})

	admission.Redact(scope, app)

	if len(app.Committees) != 2 || len(app.Statuses) != 2 {
		t.Fatalf("election view must be unredacted, got %+v", app)
	}
}

func TestRedactMainBoardCaller(t *testing.T) {
	app := buildApp(2, 7)
	scope := admission.ScopeFor(sentinels, []int64{2})

	admission.Redact(scope, app)

	if len(app.Committees) != 1 || app.Committees[0].ID != 7 {
		t.Fatalf("expected only committee 7 to remain, got %+v", app.Committees)
	}
}
