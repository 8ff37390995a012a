package shortlist

import "errors"

var (
	// ErrNotFound is returned when a shortlist does not exist or has expired.
	ErrNotFound = errors.New("shortlist not found")

	// ErrMissingSlug is returned when a lookup is attempted without a slug.
	ErrMissingSlug = errors.New("missing shortlist id")

	// ErrUnavailable wraps failures of the backing store.
	ErrUnavailable = errors.New("shortlist store unavailable")
)

// Client-facing validation messages.
const (
	MsgNoIDs        = "Provide at least one listing id."
	MsgTooMany      = "You can only share up to 20 listings at a time."
	MsgInvalidID    = "Invalid listing id: "
	MsgNoValidIDs   = "No valid listings found to share."
	MsgMissingSlug  = "Missing shortlist id."
	MsgNotFound     = "Shortlist not found or has expired."
	MsgCreateFailed = "Shortlist sharing is temporarily unavailable."
	MsgGetFailed    = "Unable to retrieve shortlist."
)

// ValidationError is a rejected share request. Its message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
