package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ABCGHL_CONFIG is set
//  3. env (prefix ABCGHL_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ABCGHL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ABCGHL_ADDR, ABCGHL_PAGE_SIZE, ...
	// A double underscore nests: ABCGHL_SOURCE__APP_ID -> source.app_id.
	// Single underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("ABCGHL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "abcghl_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return ErrEmptyAddr
	}
	if c.RunMode != ModeServe && c.RunMode != ModeOnce {
		return fmt.Errorf("%w: %q", ErrInvalidRunMode, c.RunMode)
	}
	if c.PageSize <= 0 || c.PageCap <= 0 {
		return ErrInvalidPaging
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url must not be empty")
	}
	if c.Target.BaseURL == "" {
		return fmt.Errorf("target.base_url must not be empty")
	}
	return nil
}
