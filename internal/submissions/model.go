package submissions

import (
	"strings"
	"time"
)

// Status controls visibility of a stored submission. New records default
// to private; only staff tooling flips them.
type Status string

const (
	StatusPrivate Status = "private"
	StatusVisible Status = "visible"
)

// Submission is a durably stored, accepted contact-form submission.
// Records are immutable once written; retention is an external concern.
type Submission struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Company           string    `json:"company,omitempty"`
	Subject           string    `json:"subject"`
	Message           string    `json:"message"`
	PrivacyConsent    bool      `json:"privacy_consent"`
	NewsletterConsent bool      `json:"newsletter_consent"`
	PageID            string    `json:"page_id,omitempty"`
	UserAgent         string    `json:"user_agent,omitempty"`
	Referrer          string    `json:"referrer,omitempty"`
	SourceIP          string    `json:"source_ip,omitempty"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateSubmissionRequest carries the fields persisted for an accepted
// submission. ID, status, and creation time are assigned by the store.
type CreateSubmissionRequest struct {
	Name              string
	Email             string
	Phone             string
	Company           string
	Subject           string
	Message           string
	PrivacyConsent    bool
	NewsletterConsent bool
	PageID            string
	UserAgent         string
	Referrer          string
	SourceIP          string
}

// Validate guards the store against records the intake pipeline should
// never hand it.
func (r *CreateSubmissionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(r.Message) == "" {
		return ErrMissingMessage
	}
	return nil
}

// ListFilter narrows and pages admin listings.
type ListFilter struct {
	Status  Status
	Subject string
	Limit   int
	Offset  int
}
