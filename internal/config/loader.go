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
//  2. file (YAML) if HIREIN_CONFIG is set
//  3. env (prefix HIREIN_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("HIREIN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: HIREIN_ADDR, HIREIN_QUEUE_SIZE, ...
	// Map env keys like HIREIN_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HIREIN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hirein_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.PassThreshold < 0 || c.PassThreshold > 1 {
		return fmt.Errorf("%w: pass_threshold must be in [0,1]", ErrInvalidConfig)
	}
	if !(c.KnowledgeIntermediateCut < c.KnowledgeAdvancedCut &&
		c.KnowledgeAdvancedCut < c.KnowledgeExpertCut) {
		return fmt.Errorf("%w: knowledge cuts must be strictly increasing", ErrInvalidConfig)
	}
	if c.JoinTokenTTL <= 0 {
		return fmt.Errorf("%w: join_token_ttl must be positive", ErrInvalidConfig)
	}
	if c.JoinTokenLength < 16 || c.JoinTokenLength > 64 {
		return fmt.Errorf("%w: join_token_length must be in [16,64]", ErrInvalidConfig)
	}
	if c.JudgeLatencyMinMS < 0 || c.JudgeLatencyMaxMS < c.JudgeLatencyMinMS {
		return fmt.Errorf("%w: judge latency bounds out of order", ErrInvalidConfig)
	}
	return nil
}
