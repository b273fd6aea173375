package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/talentgrid/intake-service/internal/ratelimit"
	"github.com/talentgrid/intake-service/internal/submissions"
	"github.com/talentgrid/intake-service/pkg/logging"
)

// AdminSubmissionsHandler handles the staff-facing submission endpoints.
type AdminSubmissionsHandler struct {
	repo    submissions.Repository
	limiter *ratelimit.FixedWindowLimiter
	logger  *logging.Logger
}

// NewAdminSubmissionsHandler creates the admin handler. limiter may be nil
// when rate limiting is disabled; the reset endpoint then returns 503.
func NewAdminSubmissionsHandler(repo submissions.Repository, limiter *ratelimit.FixedWindowLimiter, logger *logging.Logger) *AdminSubmissionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSubmissionsHandler{
		repo:    repo,
		limiter: limiter,
		logger:  logger,
	}
}

// SubmissionsListResponse wraps a page of submissions.
type SubmissionsListResponse struct {
	Submissions []*submissions.Submission `json:"submissions"`
	Count       int                       `json:"count"`
	Limit       int                       `json:"limit"`
	Offset      int                       `json:"offset"`
}

// List returns stored submissions, newest first.
// GET /admin/submissions?status=&subject=&limit=&offset=
func (h *AdminSubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	list, err := h.repo.List(r.Context(), submissions.ListFilter{
		Status:  submissions.Status(q.Get("status")),
		Subject: q.Get("subject"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.logger.Error("failed to list submissions", "error", err)
		http.Error(w, "failed to list submissions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*submissions.Submission{}
	}

	writeJSON(w, http.StatusOK, SubmissionsListResponse{
		Submissions: list,
		Count:       len(list),
		Limit:       limit,
		Offset:      offset,
	})
}

// Get returns a single submission.
// GET /admin/submissions/{id}
func (h *AdminSubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get submission", "error", err, "id", id)
		http.Error(w, "failed to get submission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Delete removes a submission, typically for a data removal request.
// DELETE /admin/submissions/{id}
func (h *AdminSubmissionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete submission", "error", err, "id", id)
		http.Error(w, "failed to delete submission", http.StatusInternalServerError)
		return
	}
	h.logger.Info("submission deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

type resetRateLimitRequest struct {
	IP string `json:"ip"`
}

// ResetRateLimit clears the submission counter for an IP, unblocking a
// visitor who hit the hourly limit legitimately.
// POST /admin/ratelimit/reset
func (h *AdminSubmissionsHandler) ResetRateLimit(w http.ResponseWriter, r *http.Request) {
	if h.limiter == nil {
		http.Error(w, "rate limiting disabled", http.StatusServiceUnavailable)
		return
	}

	var req resetRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.IP) == "" {
		http.Error(w, "missing ip", http.StatusBadRequest)
		return
	}

	if err := h.limiter.Reset(r.Context(), ratelimit.IdentityKey(strings.TrimSpace(req.IP))); err != nil {
		h.logger.Error("failed to reset rate limit", "error", err)
		http.Error(w, "failed to reset rate limit", http.StatusInternalServerError)
		return
	}
	h.logger.Info("rate limit counter reset")
	w.WriteHeader(http.StatusNoContent)
}
