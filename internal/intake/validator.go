package intake

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Limits bounds the free-text message field.
type Limits struct {
	MessageMinLen int
	MessageMaxLen int
}

// DefaultLimits matches the public contact form.
func DefaultLimits() Limits {
	return Limits{MessageMinLen: 10, MessageMaxLen: 2000}
}

// Validate checks a submission and returns the first violated constraint,
// or nil when the request is acceptable. It reports a single
// human-readable error per call and has no side effects.
func Validate(req *SubmissionRequest, limits Limits) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(req.Email) == "" {
		return ErrEmailRequired
	}
	if !validEmail(req.Email) {
		return ErrEmailInvalid
	}
	if strings.TrimSpace(req.Subject) == "" {
		return ErrSubjectRequired
	}
	if _, ok := ParseSubject(req.Subject); !ok {
		return ErrSubjectUnknown
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ErrMessageRequired
	}
	if n := utf8.RuneCountInString(msg); n < limits.MessageMinLen {
		return ErrMessageTooShort
	} else if n > limits.MessageMaxLen {
		return ErrMessageTooLong
	}
	if !req.PrivacyConsent {
		return ErrConsentRequired
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil || addr.Name != "" {
		return false
	}
	// mail.ParseAddress accepts bare local domains; the form wants a
	// routable address.
	at := strings.LastIndex(addr.Address, "@")
	if at < 1 {
		return false
	}
	domain := addr.Address[at+1:]
	return strings.Contains(domain, ".")
}
