package intake

import "errors"

// Validation errors are surfaced to the submitter verbatim, so the text
// stays user-correctable and free of internals.
var (
	ErrNameRequired    = errors.New("Please tell us your name")
	ErrEmailRequired   = errors.New("Please provide an email address")
	ErrEmailInvalid    = errors.New("Please provide a valid email address")
	ErrSubjectRequired = errors.New("Please choose a subject")
	ErrSubjectUnknown  = errors.New("Please choose a valid subject")
	ErrMessageRequired = errors.New("Please include a message")
	ErrMessageTooShort = errors.New("Your message is too short")
	ErrMessageTooLong  = errors.New("Your message is too long")
	ErrConsentRequired = errors.New("Please accept the privacy policy to continue")
)
