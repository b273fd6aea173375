package submissions

import "errors"

var (
	// ErrMissingName is returned when the name is empty
	ErrMissingName = errors.New("name is required")

	// ErrMissingEmail is returned when the email is empty
	ErrMissingEmail = errors.New("email is required")

	// ErrMissingMessage is returned when the message is empty
	ErrMissingMessage = errors.New("message is required")

	// ErrNotFound is returned when a submission does not exist
	ErrNotFound = errors.New("submission not found")
)
