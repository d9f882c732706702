package upsert

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upsert errors.
var (
	// ErrNotFound is returned by Directory lookups when no contact matches.
	// Transport failures must never be folded into it.
	ErrNotFound = errors.New("contact not found")

	// ErrDuplicateUnresolved marks a create rejected as a duplicate whose
	// conflicting contact could not be resolved either. The record is lost
	// for this run and picked up again on the next one.
	ErrDuplicateUnresolved = errors.New("duplicate contact unresolved")
)

// DuplicateError signals that the target system rejected a create because a
// contact with the same identity already exists. ContactID carries the
// conflicting contact's id when the rejection response supplied one.
type DuplicateError struct {
	ContactID string
	Message   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate contact (id=%q): %s", e.ContactID, e.Message)
}

// isNotFound reports whether err is a genuine empty lookup.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// asDuplicate extracts a duplicate rejection from a create error chain.
func asDuplicate(err error) (*DuplicateError, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
