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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FEINT_CONFIG is set
//  3. env (prefix FEINT_), e.g. FEINT_BIND_HOST, FEINT_BIND_PORT
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FEINT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like FEINT_BIND_PORT -> bind_port (flat keys, underscores
	// preserved to match the koanf tags on the struct).
	envProvider := env.Provider("FEINT_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "feint_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.BindHost) == "" {
		return fmt.Errorf("%w: bind_host must not be empty", ErrInvalidConfig)
	}
	if cfg.BindPort < 1 || cfg.BindPort > 65535 {
		return fmt.Errorf("%w: bind_port must be in 1..65535, got %d", ErrInvalidConfig, cfg.BindPort)
	}
	if cfg.StallSeconds <= 0 {
		return fmt.Errorf("%w: stall_seconds must be positive, got %d", ErrInvalidConfig, cfg.StallSeconds)
	}
	if cfg.BodyLogLimit < 0 {
		return fmt.Errorf("%w: body_log_limit must not be negative, got %d", ErrInvalidConfig, cfg.BodyLogLimit)
	}
	return nil
}
