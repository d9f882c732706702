package mapper

import "errors"

// Sentinel kinds for mapping errors.
var (
	// ErrUnmappableRecord marks a record with no email identity. Such a
	// record must never be attempted against the target system.
	ErrUnmappableRecord = errors.New("unmappable record: missing email")
)
