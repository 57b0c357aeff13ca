package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCheckedIn means the user already has an open session.
	ErrAlreadyCheckedIn = errors.New("user is already checked in")
	// ErrNotCheckedIn means the user has no open session to close.
	ErrNotCheckedIn = errors.New("user is not checked in")
	// ErrNotRecognized means no roster entry matched the captured photo.
	ErrNotRecognized = errors.New("user not recognized")
	// ErrDuplicateID means a user with the same ID is already registered.
	ErrDuplicateID = errors.New("user ID is already registered")
	// ErrInvalidInput means the registration name or ID is empty.
	ErrInvalidInput = errors.New("name and ID are required")
	// ErrStorage wraps failures of the roster or record backends.
	ErrStorage = errors.New("storage failure")
	// ErrBusy is returned by callers that refuse a new intent while one is running.
	ErrBusy = errors.New("another operation is in progress")
)

// OracleError aborts a roster scan when the face comparison for a candidate fails.
type OracleError struct {
	Candidate string // ID of the user being compared
	Err       error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("face comparison failed for user %s: %v", e.Candidate, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
