package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/opptakhq/opptak/api"
	dbfs "github.com/opptakhq/opptak/db"
	"github.com/opptakhq/opptak/internal/config"
	"github.com/opptakhq/opptak/internal/db"
	"github.com/opptakhq/opptak/internal/repository/sqlite"
	"github.com/opptakhq/opptak/pkg/models"
)

type testServer struct {
	*httptest.Server
	repo *sqlite.SQLiteRepo
	cfg  *config.Config
}

// setupServer wires the full router against a fresh in-memory database with
// the seeded committees: 1 election, 2 main board, 3 operations, 4 events,
// 5 finance (closed).
func setupServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := db.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:     "testsecret",
		TokenDuration: time.Hour,
		MembershipTTL: time.Minute,
		Admission:     config.AdmissionConfig{ElectionCommitteeID: 1, MainBoardID: 2},
	}
	router, err := api.SetupRoutes(cfg, "test", "now", database, nil, nil)
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, repo: sqlite.New(database, nil), cfg: cfg}
}

func (ts *testServer) seedUser(t *testing.T, id int64, password string, committees ...int64) {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{ID: id, Name: fmt.Sprintf("user-%d", id), PasswordHash: string(hash)}
	if err := ts.repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, cid := range committees {
		if err := ts.repo.AddMembership(ctx, id, cid); err != nil {
			t.Fatalf("add membership: %v", err)
		}
	}
}

func (ts *testServer) token(t *testing.T, userID int64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(ts.cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// openPeriod opens an admission period covering the next hour.
func (ts *testServer) openPeriod(t *testing.T) {
	t.Helper()
	now := time.Now().UTC().UnixMilli()
	p := &models.AdmissionPeriod{StartsAt: now - int64(time.Hour/time.Millisecond), EndsAt: now + int64(time.Hour/time.Millisecond)}
	if _, err := ts.repo.CreatePeriod(context.Background(), p); err != nil {
		t.Fatalf("create period: %v", err)
	}
}

// seedApplication inserts an application addressed to the given committees,
// statuses first.
func (ts *testServer) seedApplication(t *testing.T, name string, created int64, committees ...int64) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	statusIDs, err := ts.repo.CreateStatuses(ctx, committees, models.StatusPending)
	if err != nil {
		t.Fatalf("create statuses: %v", err)
	}
	appID, err := ts.repo.CreateApplication(ctx, name, created, statusIDs)
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return appID, statusIDs
}

// do performs a request against the test server. A non-empty token goes into
// the Authorization header; body is JSON-encoded when non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

type applicationBody struct {
	ID         int64 `json:"id"`
	Name       string
	Committees []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"committees"`
	Statuses []struct {
		ID        int64  `json:"id"`
		Committee int64  `json:"committee"`
		Value     string `json:"value"`
	} `json:"statuses"`
}

type listBody struct {
	Applications []struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Committees []struct {
			ID int64 `json:"id"`
		} `json:"committees"`
		Statuses []map[string]any `json:"statuses"`
	} `json:"applications"`
	Pagination struct {
		CurrentPage   int `json:"currentPage"`
		NumberOfPages int `json:"numberOfPages"`
	} `json:"pagination"`
}
