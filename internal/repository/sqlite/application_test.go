package sqlite_test

import (
	"context"
	"testing"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/internal/repository/sqlite"
	"github.com/opptakhq/opptak/pkg/models"
)

var testSentinels = admission.Sentinels{ElectionCommittee: 1, MainBoard: 2}

func electionScope() admission.Scope {
	return admission.ScopeFor(testSentinels, []int64{1})
}

func memberScope(committees ...int64) admission.Scope {
	return admission.ScopeFor(testSentinels, committees)
}

// submitApp creates the status rows first, then the application referencing
// them, mirroring the submission flow. All statuses start out pending.
func submitApp(t *testing.T, repo *sqlite.SQLiteRepo, name string, created int64, committees ...int64) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	statusIDs, err := repo.CreateStatuses(ctx, committees, models.StatusPending)
	if err != nil {
		t.Fatalf("create statuses for %q: %v", name, err)
	}
	if len(statusIDs) != len(committees) {
		t.Fatalf("expected %d status ids, got %d", len(committees), len(statusIDs))
	}
	appID, err := repo.CreateApplication(ctx, name, created, statusIDs)
	if err != nil {
		t.Fatalf("create application %q: %v", name, err)
	}
	return appID, statusIDs
}

func listNames(apps []models.Application) []string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	return names
}

func TestCreateAndGetApplication(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	appID, statusIDs := submitApp(t, repo, "Ada Lovelace", 100, 3, 4)

	got, err := repo.GetApplication(ctx, appID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if got == nil {
		t.Fatalf("application not found")
	}
	if got.Name != "Ada Lovelace" || got.Created != 100 {
		t.Fatalf("unexpected application: %+v", got)
	}
	if len(got.Committees) != 2 || len(got.Statuses) != 2 {
		t.Fatalf("expected 2 committees and 2 statuses, got %+v", got)
	}
	// entries stay in submission order and aligned on the committee key
	for i, cid := range []int64{3, 4} {
		if got.Committees[i].ID != cid || got.Statuses[i].CommitteeID != cid {
			t.Fatalf("entry %d misaligned: %+v / %+v", i, got.Committees[i], got.Statuses[i])
		}
		if got.Statuses[i].ID != statusIDs[i] {
			t.Fatalf("entry %d: want status id %d got %d", i, statusIDs[i], got.Statuses[i].ID)
		}
		if got.Statuses[i].Value != models.StatusPending {
			t.Fatalf("entry %d: want pending got %s", i, got.Statuses[i].Value)
		}
	}
	if got.Committees[0].Slug != "operations" || got.Committees[1].Slug != "events" {
		t.Fatalf("committee refs not hydrated: %+v", got.Committees)
	}
}

func TestGetApplicationMissing(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	got, err := repo.GetApplication(ctx, 404)
	if err != nil {
		t.Fatalf("get missing application: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestCreateStatusesRequiresCommittees(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	if _, err := repo.CreateStatuses(ctx, nil, models.StatusPending); err == nil {
		t.Fatalf("expected error for empty committee set")
	}
}

func TestListVisibilityScopes(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	submitApp(t, repo, "board only", 1, 2)
	submitApp(t, repo, "operations", 2, 3)
	submitApp(t, repo, "board and events", 3, 2, 4)

	cases := []struct {
		name  string
		scope admission.Scope
		want  []string
	}{
		{name: "ElectionSeesAll", scope: electionScope(), want: []string{"board only", "operations", "board and events"}},
		{name: "MainBoardSkipsBoardOnly", scope: memberScope(2), want: []string{"operations", "board and events"}},
		{name: "OperationsMember", scope: memberScope(3), want: []string{"operations"}},
		{name: "EventsMember", scope: memberScope(4), want: []string{"board and events"}},
		{name: "NoMemberships", scope: memberScope(), want: nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			apps, total, err := repo.ListApplications(ctx, c.scope, admission.ListQuery{Sort: admission.SortDateAsc})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if int(total) != len(c.want) {
				t.Fatalf("total: want %d got %d", len(c.want), total)
			}
			got := listNames(apps)
			if len(got) != len(c.want) {
				t.Fatalf("want %v got %v", c.want, got)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("want %v got %v", c.want, got)
				}
			}
		})
	}
}

func TestListConjunctiveFilter(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	// one status accepted for events, one pending for operations
	_, statusIDs := submitApp(t, repo, "split", 1, 3, 4)
	if err := repo.UpdateStatusValue(ctx, statusIDs[1], models.StatusAccepted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	cases := []struct {
		name  string
		q     admission.ListQuery
		match bool
	}{
		{name: "CommitteeAlone", q: admission.ListQuery{Committees: []int64{3}}, match: true},
		{name: "StatusAlone", q: admission.ListQuery{Status: models.StatusAccepted}, match: true},
		// both conditions must hold on the same status entry, not one each
		{name: "CrossEntryPairRejected", q: admission.ListQuery{Committees: []int64{3}, Status: models.StatusAccepted}, match: false},
		{name: "SameEntryPairMatches", q: admission.ListQuery{Committees: []int64{4}, Status: models.StatusAccepted}, match: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			apps, total, err := repo.ListApplications(ctx, electionScope(), c.q)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if c.match && (total != 1 || len(apps) != 1) {
				t.Fatalf("expected a match, got total=%d apps=%v", total, listNames(apps))
			}
			if !c.match && (total != 0 || len(apps) != 0) {
				t.Fatalf("expected no match, got total=%d apps=%v", total, listNames(apps))
			}
		})
	}
}

func TestListNameFilter(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	submitApp(t, repo, "Ada Lovelace", 1, 3)
	submitApp(t, repo, "Grace Hopper", 2, 3)

	apps, total, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{Name: "lOVE"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(apps) != 1 || apps[0].Name != "Ada Lovelace" {
		t.Fatalf("expected only Ada, got total=%d %v", total, listNames(apps))
	}
}

func TestListSorts(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	submitApp(t, repo, "beta", 30, 3)
	submitApp(t, repo, "Alpha", 10, 3)
	submitApp(t, repo, "gamma", 20, 3)

	cases := []struct {
		sort string
		want []string
	}{
		{sort: admission.SortNameAsc, want: []string{"Alpha", "beta", "gamma"}},
		{sort: admission.SortNameDesc, want: []string{"gamma", "beta", "Alpha"}},
		{sort: admission.SortDateAsc, want: []string{"Alpha", "gamma", "beta"}},
		{sort: admission.SortDateDesc, want: []string{"beta", "gamma", "Alpha"}},
	}
	for _, c := range cases {
		t.Run(c.sort, func(t *testing.T) {
			apps, _, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{Sort: c.sort})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := listNames(apps)
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("want %v got %v", c.want, got)
				}
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	names := []string{"a", "b", "c", "d", "e", "f"}
	for i, n := range names {
		submitApp(t, repo, n, int64(i), 3)
	}

	page1, total, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{Sort: admission.SortDateAsc, Page: 1})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 6 || len(page1) != 4 {
		t.Fatalf("page 1: want total 6 and 4 rows, got %d and %d", total, len(page1))
	}

	page2, total, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{Sort: admission.SortDateAsc, Page: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 6 || len(page2) != 2 {
		t.Fatalf("page 2: want total 6 and 2 rows, got %d and %d", total, len(page2))
	}
	if page2[0].Name != "e" || page2[1].Name != "f" {
		t.Fatalf("unexpected page 2 window: %v", listNames(page2))
	}

	empty, total, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{Sort: admission.SortDateAsc, Page: 3})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(empty) != 0 || total != 0 {
		// past the last page the window is empty; no rows means no window total
		t.Fatalf("page 3: want empty window, got total=%d rows=%d", total, len(empty))
	}
}

func TestUpdateStatusValue(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	appID, statusIDs := submitApp(t, repo, "Ada", 1, 3)
	if err := repo.UpdateStatusValue(ctx, statusIDs[0], models.StatusInvitedToInterview); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetApplication(ctx, appID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Statuses[0].Value != models.StatusInvitedToInterview {
		t.Fatalf("status not updated: %+v", got.Statuses[0])
	}

	if err := repo.UpdateStatusValue(ctx, 9999, models.StatusAccepted); err == nil {
		t.Fatalf("expected error for unknown status id")
	}
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	submitApp(t, repo, "Ada", 1, 3)
	submitApp(t, repo, "Grace", 2, 4)

	if err := repo.DeleteAllApplications(ctx); err != nil {
		t.Fatalf("delete applications: %v", err)
	}
	if err := repo.DeleteAllStatuses(ctx); err != nil {
		t.Fatalf("delete statuses: %v", err)
	}

	apps, total, err := repo.ListApplications(ctx, electionScope(), admission.ListQuery{})
	if err != nil {
		t.Fatalf("list after wipe: %v", err)
	}
	if len(apps) != 0 || total != 0 {
		t.Fatalf("expected empty store, got total=%d rows=%d", total, len(apps))
	}
}
