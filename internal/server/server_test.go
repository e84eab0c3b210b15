package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobtrail/internal/applications"
	"jobtrail/internal/auth"
	"jobtrail/internal/common/config"
	"jobtrail/internal/common/database"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
	"jobtrail/internal/search"
	"jobtrail/internal/tracker"
)

// ==========================
// Harness
// ==========================

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type stubStore struct {
	docs []models.JobListing
}

func (s *stubStore) Run(ctx context.Context, p *search.Pipeline) ([]models.RankedListing, error) {
	out := make([]models.RankedListing, 0, len(s.docs))
	for _, doc := range s.docs {
		if len(out) == p.Limit {
			break
		}
		out = append(out, models.RankedListing{JobListing: doc, Score: 1})
	}
	return out, nil
}

func (s *stubStore) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	stored := map[string]bool{}
	for _, doc := range s.docs {
		stored[doc.JobURL] = true
	}
	known := map[string]bool{}
	for _, url := range urls {
		if stored[url] {
			known[url] = true
		}
	}
	return known, nil
}

func (s *stubStore) Insert(ctx context.Context, fresh []models.JobListing) (int, error) {
	s.docs = append(s.docs, fresh...)
	return len(fresh), nil
}

type stubSource struct {
	listings []models.JobListing
}

func (s *stubSource) Query(ctx context.Context, filters map[string]string) ([]models.JobListing, error) {
	return s.listings, nil
}

type harness struct {
	router   *gin.Engine
	userMock sqlmock.Sqlmock
	appMock  sqlmock.Sqlmock
	sessions *auth.Sessions
	store    *stubStore
	source   *stubSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	userDB, userMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { userDB.Close() })

	appDB, appMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { appDB.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewNoOpLogger()
	sessions := auth.NewSessions(rdb, time.Hour)

	authSvc := auth.NewService(
		auth.NewRepository(&database.PostgresClient{DB: userDB}, log),
		sessions, nil, "https://app.example", bcrypt.MinCost, log)

	trackerIdx := tracker.NewIndex(rdb, log)
	appsSvc := applications.NewService(
		applications.NewRepository(&database.PostgresClient{DB: appDB}, log), trackerIdx, log)

	store := &stubStore{}
	source := &stubSource{}
	searchSvc := search.NewService(stubEmbedder{}, store, source,
		config.SearchConfig{FreshnessHours: 24, RequestTimeoutMs: 1000}, log)

	cfg := &config.Config{}
	srv := New(cfg, searchSvc, appsSvc, authSvc, trackerIdx, nil, log)

	return &harness{
		router:   srv.Router(),
		userMock: userMock,
		appMock:  appMock,
		sessions: sessions,
		store:    store,
		source:   source,
	}
}

// login opens a session directly and arranges the user lookup each
// authenticated request performs.
func (h *harness) login(t *testing.T) string {
	t.Helper()
	token, err := h.sessions.Create(context.Background(), "u1")
	require.NoError(t, err)
	return token
}

func (h *harness) expectUserLookup() {
	h.userMock.ExpectQuery("SELECT .+ FROM users WHERE id = ").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "username", "first_name", "last_name",
			"password_hash", "verified", "created_at",
		}).AddRow("u1", "jane@example.com", "jane_doe", "Jane", "Doe", "hash", true, time.Now()))
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// ==========================
// Routes
// ==========================

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearch_RequiresSession(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/jobs/search?query=golang", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearch_ReturnsArray(t *testing.T) {
	h := newHarness(t)
	h.source.listings = []models.JobListing{
		{Position: "Go Developer", Company: "Acme", JobURL: "https://jobs.example/1"},
	}
	token := h.login(t)
	h.expectUserLookup()

	w := h.do(t, http.MethodGet, "/api/jobs/search?query=golang&limit=10", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var results []models.RankedListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Go Developer", results[0].Position)
}

func TestSearch_EmptyResultIsEmptyArrayNotNull(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	h.expectUserLookup()

	w := h.do(t, http.MethodGet, "/api/jobs/search?query=golang", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestSearch_MissingQueryStillSearches(t *testing.T) {
	h := newHarness(t)
	h.store.docs = []models.JobListing{
		{Position: "Go Developer", Company: "Acme", JobURL: "https://jobs.example/1"},
	}
	token := h.login(t)
	h.expectUserLookup()

	w := h.do(t, http.MethodGet, "/api/jobs/search", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var results []models.RankedListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
}

func TestTrackApplication(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	h.expectUserLookup()

	h.appMock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := h.do(t, http.MethodPost, "/api/applications", token, gin.H{
		"jobId":   "job-1",
		"company": "Acme",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var app models.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, "u1", app.UserID)
	assert.Equal(t, "job-1", app.JobID)
}

func TestDashboard_EmptyUserGetsZeroDefaults(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	h.expectUserLookup()

	h.appMock.ExpectQuery("SELECT .+ FROM applications WHERE user_id = ").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "job_id", "company", "applied_at",
			"screen_at", "interview_at", "offer_at", "final_status", "final_status_at",
		}))

	w := h.do(t, http.MethodGet, "/api/analytics/dashboard", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0", string(resp["totalApplications"]))
	assert.Equal(t, "[]", string(resp["stageDurations"]))
}

func TestDashboard_ReportsMonthOverMonthChange(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	h.expectUserLookup()

	now := time.Now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	h.appMock.ExpectQuery("SELECT .+ FROM applications WHERE user_id = ").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "job_id", "company", "applied_at",
			"screen_at", "interview_at", "offer_at", "final_status", "final_status_at",
		}).
			AddRow("a1", "u1", "j1", "Acme", thisMonth, nil, nil, nil, nil, nil).
			AddRow("a2", "u1", "j2", "Acme", thisMonth, nil, nil, nil, nil, nil).
			AddRow("a3", "u1", "j3", "Acme", lastMonth, nil, nil, nil, nil, nil))

	w := h.do(t, http.MethodGet, "/api/analytics/dashboard", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		MonthlyChange struct {
			Current  int     `json:"current"`
			Previous int     `json:"previous"`
			Change   float64 `json:"change"`
		} `json:"monthlyChange"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.MonthlyChange.Current)
	assert.Equal(t, 1, resp.MonthlyChange.Previous)
	assert.Equal(t, 100.0, resp.MonthlyChange.Change)
}

func TestRegister_InvalidBodyIsBadRequest(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
