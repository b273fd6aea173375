package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentgrid/intake-service/internal/ratelimit"
	"github.com/talentgrid/intake-service/internal/submissions"
)

func seededRepo(t *testing.T, count int) *submissions.InMemoryRepository {
	t.Helper()
	repo := submissions.NewInMemoryRepository()
	for i := 0; i < count; i++ {
		_, err := repo.Create(context.Background(), &submissions.CreateSubmissionRequest{
			Name:           "Jane Doe",
			Email:          "jane@x.com",
			Subject:        "general",
			Message:        "Hello, I have a question about your services.",
			PrivacyConsent: true,
		})
		require.NoError(t, err)
	}
	return repo
}

func adminRouter(h *AdminSubmissionsHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/admin/submissions", h.List)
	r.Get("/admin/submissions/{id}", h.Get)
	r.Delete("/admin/submissions/{id}", h.Delete)
	r.Post("/admin/ratelimit/reset", h.ResetRateLimit)
	return r
}

func TestAdminListSubmissions(t *testing.T) {
	repo := seededRepo(t, 3)
	router := adminRouter(NewAdminSubmissionsHandler(repo, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmissionsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Submissions, 3)
	assert.Equal(t, 50, resp.Limit)
}

func TestAdminListSubmissionsPaging(t *testing.T) {
	repo := seededRepo(t, 5)
	router := adminRouter(NewAdminSubmissionsHandler(repo, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/submissions?limit=2&offset=4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmissionsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 4, resp.Offset)
}

func TestAdminListSubmissionsEmpty(t *testing.T) {
	router := adminRouter(NewAdminSubmissionsHandler(submissions.NewInMemoryRepository(), nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"submissions":[]`)
}

func TestAdminGetSubmission(t *testing.T) {
	repo := seededRepo(t, 1)
	list, err := repo.List(context.Background(), submissions.ListFilter{})
	require.NoError(t, err)
	id := list[0].ID

	router := adminRouter(NewAdminSubmissionsHandler(repo, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/submissions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sub submissions.Submission
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sub))
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, "Jane Doe", sub.Name)
}

func TestAdminGetSubmissionNotFound(t *testing.T) {
	router := adminRouter(NewAdminSubmissionsHandler(submissions.NewInMemoryRepository(), nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/submissions/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteSubmission(t *testing.T) {
	repo := seededRepo(t, 1)
	list, err := repo.List(context.Background(), submissions.ListFilter{})
	require.NoError(t, err)
	id := list[0].ID

	router := adminRouter(NewAdminSubmissionsHandler(repo, nil, nil))

	req := httptest.NewRequest(http.MethodDelete, "/admin/submissions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Second delete reports not found.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/submissions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminResetRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := ratelimit.NewFixedWindowLimiter(client, ratelimit.Config{
		Enabled: true,
		Max:     3,
		Window:  time.Hour,
	}, nil)

	// Exhaust the window for one identity.
	identity := ratelimit.IdentityKey("203.0.113.7")
	for i := 0; i < 4; i++ {
		_, err := limiter.Check(context.Background(), identity)
		require.NoError(t, err)
	}
	res, err := limiter.Check(context.Background(), identity)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	router := adminRouter(NewAdminSubmissionsHandler(submissions.NewInMemoryRepository(), limiter, nil))

	req := httptest.NewRequest(http.MethodPost, "/admin/ratelimit/reset", strings.NewReader(`{"ip": "203.0.113.7"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	res, err = limiter.Check(context.Background(), identity)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.CurrentCount)
}

func TestAdminResetRateLimitMissingIP(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := ratelimit.NewFixedWindowLimiter(client, ratelimit.DefaultConfig(), nil)

	router := adminRouter(NewAdminSubmissionsHandler(submissions.NewInMemoryRepository(), limiter, nil))

	req := httptest.NewRequest(http.MethodPost, "/admin/ratelimit/reset", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminResetRateLimitDisabled(t *testing.T) {
	router := adminRouter(NewAdminSubmissionsHandler(submissions.NewInMemoryRepository(), nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/admin/ratelimit/reset", strings.NewReader(`{"ip": "203.0.113.7"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
