package service

import "errors"

// Sentinel kinds for service wiring errors.
var (
	ErrNoSourceClient = errors.New("no source client configured")
	ErrNoDirectory    = errors.New("no target directory configured")
	ErrNotStarted     = errors.New("service not started")
)
