// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and env layers override them in Load.
// - Clubs are the per-tenant credential units every sync run iterates.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/mapper"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
)

// Run modes.
const (
	ModeServe = "serve" // admin HTTP server; runs are triggered over HTTP
	ModeOnce  = "once"  // single run, then exit (cron-friendly)
)

// SourceConfig holds the gym-platform API endpoint and its two static
// credential headers.
type SourceConfig struct {
	BaseURL string `koanf:"base_url"`
	AppID   string `koanf:"app_id"`
	AppKey  string `koanf:"app_key"`
}

// TargetConfig holds the CRM API endpoint and fixed version header.
// Per-club bearer tokens live on the club entries, not here.
type TargetConfig struct {
	BaseURL    string `koanf:"base_url"`
	APIVersion string `koanf:"api_version"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the admin HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RunMode selects serve (HTTP-triggered runs) or once (run and exit).
	RunMode string `koanf:"run_mode"`

	Source SourceConfig `koanf:"source"`
	Target TargetConfig `koanf:"target"`

	// Clubs lists every club/tenant a run covers, in processing order.
	Clubs []model.ClubContext `koanf:"clubs"`

	// Kinds limits which record kinds a run covers; empty means all.
	Kinds []string `koanf:"kinds"`

	// PageSize and PageCap bound source pagination.
	PageSize int `koanf:"page_size"`
	PageCap  int `koanf:"page_cap"`

	// WriteDelayMS is the cooperative delay between target writes.
	WriteDelayMS int `koanf:"write_delay_ms"`

	// WindowDays sets the default trailing date window for scheduled runs.
	WindowDays int `koanf:"window_days"`

	// ExcludedTypes are membership/service types never synced.
	ExcludedTypes []string `koanf:"excluded_types"`

	// FieldMap overrides the custom-field vocabulary; empty uses the
	// canonical default set.
	FieldMap []mapper.FieldSpec `koanf:"field_map"`

	// ActionTags overrides the tag applied per record kind.
	ActionTags map[string]string `koanf:"action_tags"`
}

// New creates a Config holding the defaults every layer builds on.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":8080",
		RunMode:  ModeServe,
		Source: SourceConfig{
			BaseURL: "https://api.abcfinancial.com/rest",
		},
		Target: TargetConfig{
			BaseURL:    "https://rest.gohighlevel.com",
			APIVersion: "2021-07-28",
		},
		PageSize:      5000,
		PageCap:       50,
		WriteDelayMS:  300,
		WindowDays:    1,
		ExcludedTypes: []string{"NON-MEMBER", "Employee"},
		ActionTags: map[string]string{
			string(model.KindMembers):          "sale",
			string(model.KindCancelled):        "cancelled / past member",
			string(model.KindPastDue):          "past due",
			string(model.KindServices):         "pt current",
			string(model.KindInactiveServices): "pt cancelled",
		},
	}
}

// RecordKinds resolves the configured kind list, defaulting to all kinds in
// canonical processing order.
func (c *Config) RecordKinds() []model.RecordKind {
	if len(c.Kinds) == 0 {
		return model.AllKinds()
	}
	kinds := make([]model.RecordKind, 0, len(c.Kinds))
	for _, k := range c.Kinds {
		kinds = append(kinds, model.RecordKind(k))
	}
	return kinds
}

// Fields resolves the configured field map, defaulting to the canonical set.
func (c *Config) Fields() mapper.FieldMap {
	if len(c.FieldMap) == 0 {
		return mapper.DefaultFieldMap()
	}
	return mapper.FieldMap(c.FieldMap)
}
