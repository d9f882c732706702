package abc

import "errors"

// Sentinel kinds for source fetch errors.
var (
	// ErrSourceUnavailable marks a transport or auth failure reaching the
	// source platform. It aborts the current fetch but leaves records from
	// earlier pages intact.
	ErrSourceUnavailable = errors.New("source system unavailable")

	// ErrUnknownKind marks a record kind the client has no endpoint for.
	ErrUnknownKind = errors.New("unknown record kind")
)
