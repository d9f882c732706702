package ghl

import "errors"

// Sentinel kinds for target client errors.
var (
	// ErrTargetUnavailable marks a transport failure reaching the CRM. It is
	// distinct from upsert.ErrNotFound so the engine never mistakes an
	// outage for an empty lookup.
	ErrTargetUnavailable = errors.New("target system unavailable")
)
