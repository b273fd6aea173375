// Package spam runs a submission through an ordered chain of independent
// bot defenses: honeypot, timing, rate limit, and CAPTCHA score.
package spam

import "context"

// Check names, used in verdicts, logs, and metrics labels.
const (
	CheckHoneypot  = "honeypot"
	CheckTiming    = "timing"
	CheckRateLimit = "rate_limit"
	CheckCaptcha   = "captcha"
)

// Submission is the slice of a contact-form request the defenses inspect.
type Submission struct {
	SourceIP string
	// Honeypot is the hidden website_url field; humans never see it.
	Honeypot string
	// FormStartTime is the raw hidden form render timestamp (unix seconds).
	FormStartTime string
	CaptchaToken  string
}

// Verdict records the outcome of one check for one submission. Verdicts
// are never persisted or returned to the caller; Reason is for server-side
// logs only.
type Verdict struct {
	Check  string
	Passed bool
	Reason string
}

// Checker is a single spam defense. Implementations must be safe for
// concurrent use.
type Checker interface {
	// Name returns the check's stable identifier.
	Name() string
	// Inspect evaluates the submission. It must not mutate it.
	Inspect(ctx context.Context, sub *Submission) Verdict
	// RejectionMessage is the user-facing text for a failed verdict. It
	// must not reveal which defense fired.
	RejectionMessage() string
}
