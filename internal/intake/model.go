package intake

import "time"

// Subject identifies the enquiry category a visitor picked on the form.
type Subject string

const (
	SubjectGeneral     Subject = "general"
	SubjectServices    Subject = "services"
	SubjectPartnership Subject = "partnership"
	SubjectCareers     Subject = "careers"
	SubjectMedia       Subject = "media"
	SubjectFeedback    Subject = "feedback"
	SubjectOther       Subject = "other"
)

// ParseSubject returns the Subject for a form value, or false when the
// value is not one of the recognized categories.
func ParseSubject(s string) (Subject, bool) {
	switch Subject(s) {
	case SubjectGeneral, SubjectServices, SubjectPartnership, SubjectCareers,
		SubjectMedia, SubjectFeedback, SubjectOther:
		return Subject(s), true
	}
	return "", false
}

// SubmissionRequest carries one contact-form submission through the intake
// pipeline. It is transient; accepted submissions are stored as
// submissions.Submission.
type SubmissionRequest struct {
	Name              string
	Email             string
	Phone             string
	Company           string
	Subject           string
	Message           string
	PrivacyConsent    bool
	NewsletterConsent bool

	PageID    string
	UserAgent string
	Referrer  string
	SourceIP  string

	// FormStartTime is the raw hidden form_start_time field (unix seconds).
	// Kept as a string: a missing or non-numeric value is itself a signal
	// the timing check acts on.
	FormStartTime string
	Honeypot      string
	CaptchaToken  string
	CSRFToken     string

	SubmittedAt time.Time
}
