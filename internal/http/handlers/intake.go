package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talentgrid/intake-service/internal/intake"
	"github.com/talentgrid/intake-service/internal/security"
	"github.com/talentgrid/intake-service/pkg/logging"
)

// IntakeHandler exposes the public contact-form endpoints.
type IntakeHandler struct {
	orch     *intake.Orchestrator
	tokens   *security.TokenAuthority
	tokenTTL time.Duration
	logger   *logging.Logger
}

// NewIntakeHandler creates the public intake handler. tokens may be nil
// when form tokens are disabled.
func NewIntakeHandler(orch *intake.Orchestrator, tokens *security.TokenAuthority, tokenTTL time.Duration, logger *logging.Logger) *IntakeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{
		orch:     orch,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// submissionPayload is the JSON body shape; the same field names are used
// for form-urlencoded posts.
type submissionPayload struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Company           string `json:"company"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	PrivacyConsent    any    `json:"privacy_consent"`
	NewsletterConsent any    `json:"newsletter_consent"`
	PageID            string `json:"page_id"`
	WebsiteURL        string `json:"website_url"`
	FormStartTime     any    `json:"form_start_time"`
	RecaptchaToken    string `json:"recaptcha_token"`
	CSRFToken         string `json:"csrf_token"`
}

// SubmitResponse is the body returned for every submission attempt.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Submit handles POST /intake/contact. It accepts JSON and classic
// form-urlencoded posts, runs the pipeline, and maps the terminal state
// to an HTTP status.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitResponse{
			Success:   false,
			Message:   "The submission could not be read. Please check the form and try again.",
			ErrorKind: string(intake.ErrorKindValidation),
		})
		return
	}

	outcome := h.orch.Process(r.Context(), req)

	resp := SubmitResponse{
		Success:   outcome.Accepted(),
		Message:   outcome.Message,
		ErrorKind: string(outcome.ErrorKind),
		ID:        outcome.SubmissionID,
	}
	writeJSON(w, statusFor(outcome), resp)
}

func statusFor(outcome intake.Outcome) int {
	switch outcome.State {
	case intake.StateCompleted:
		return http.StatusCreated
	case intake.StateFailed:
		return http.StatusInternalServerError
	}
	switch outcome.ErrorKind {
	case intake.ErrorKindSecurity:
		return http.StatusForbidden
	case intake.ErrorKindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

func (h *IntakeHandler) parseRequest(r *http.Request) (*intake.SubmissionRequest, error) {
	var p submissionPayload

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10)).Decode(&p); err != nil {
			return nil, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		p = submissionPayload{
			Name:              r.PostFormValue("name"),
			Email:             r.PostFormValue("email"),
			Phone:             r.PostFormValue("phone"),
			Company:           r.PostFormValue("company"),
			Subject:           r.PostFormValue("subject"),
			Message:           r.PostFormValue("message"),
			PrivacyConsent:    r.PostFormValue("privacy_consent"),
			NewsletterConsent: r.PostFormValue("newsletter_consent"),
			PageID:            r.PostFormValue("page_id"),
			WebsiteURL:        r.PostFormValue("website_url"),
			FormStartTime:     r.PostFormValue("form_start_time"),
			RecaptchaToken:    r.PostFormValue("recaptcha_token"),
			CSRFToken:         r.PostFormValue("csrf_token"),
		}
	}

	return &intake.SubmissionRequest{
		Name:              strings.TrimSpace(p.Name),
		Email:             strings.TrimSpace(p.Email),
		Phone:             strings.TrimSpace(p.Phone),
		Company:           strings.TrimSpace(p.Company),
		Subject:           strings.TrimSpace(p.Subject),
		Message:           strings.TrimSpace(p.Message),
		PrivacyConsent:    truthy(p.PrivacyConsent),
		NewsletterConsent: truthy(p.NewsletterConsent),
		PageID:            strings.TrimSpace(p.PageID),
		UserAgent:         r.UserAgent(),
		Referrer:          r.Referer(),
		SourceIP:          clientIP(r),
		FormStartTime:     rawString(p.FormStartTime),
		Honeypot:          p.WebsiteURL,
		CaptchaToken:      strings.TrimSpace(p.RecaptchaToken),
		CSRFToken:         strings.TrimSpace(p.CSRFToken),
		SubmittedAt:       time.Now().UTC(),
	}, nil
}

// truthy interprets checkbox-style values: JSON booleans plus the strings
// browsers actually send for checked boxes.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

// rawString preserves the hidden timestamp field as sent; the timing
// check treats malformed values as a signal. JSON numbers arrive as
// float64 and are rendered back as unix seconds.
func rawString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	}
	return ""
}

// clientIP returns the host portion of RemoteAddr; the RealIP middleware
// has already substituted forwarded addresses.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// tokenResponse is the body for GET /intake/csrf.
type tokenResponse struct {
	Token     string `json:"token"`
	PageID    string `json:"page_id"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// IssueToken handles GET /intake/csrf?page_id=…, returning a fresh form
// token the page embeds in its hidden csrf_token field.
func (h *IntakeHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		http.Error(w, "form tokens disabled", http.StatusServiceUnavailable)
		return
	}
	pageID := strings.TrimSpace(r.URL.Query().Get("page_id"))
	if pageID == "" {
		http.Error(w, "missing page_id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     h.tokens.Issue(pageID),
		PageID:    pageID,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
