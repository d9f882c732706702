package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr      = errors.New("addr must not be empty")
	ErrInvalidRunMode = errors.New("run_mode must be serve or once")
	ErrInvalidPaging  = errors.New("page_size and page_cap must be positive")
)
