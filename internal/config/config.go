// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's sentinel kinds.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AnswerQueueSize bounds the in-memory answer-judging queue.
	AnswerQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of judging workers.
	WorkerCount int `koanf:"worker_count"`

	// PassThreshold is the minimum average score that yields a PASS verdict.
	PassThreshold float64 `koanf:"pass_threshold"`

	// Knowledge level cuts on the average score, strictly increasing.
	KnowledgeIntermediateCut float64 `koanf:"knowledge_intermediate_cut"`
	KnowledgeAdvancedCut     float64 `koanf:"knowledge_advanced_cut"`
	KnowledgeExpertCut       float64 `koanf:"knowledge_expert_cut"`

	// JoinTokenTTL controls how long a freshly issued join token is valid.
	JoinTokenTTL time.Duration `koanf:"join_token_ttl"`

	// JoinTokenLength is the length of generated join tokens.
	JoinTokenLength int `koanf:"join_token_length"`

	// JudgeLatencyMinMS and JudgeLatencyMaxMS simulate external model latency
	// bounds when the in-memory judge is used.
	JudgeLatencyMinMS int `koanf:"judge_latency_min_ms"`
	JudgeLatencyMaxMS int `koanf:"judge_latency_max_ms"`

	// GeminiModel selects the model for the Gemini-backed judge. When empty
	// the in-memory judge is used instead.
	GeminiModel string `koanf:"gemini_model"`

	// MaxListLimit caps list endpoints such as GET /interviews/{id}/turns.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		AnswerQueueSize:          10_000,
		WorkerCount:              runtime.NumCPU() * 4,
		PassThreshold:            0.7,
		KnowledgeIntermediateCut: 0.4,
		KnowledgeAdvancedCut:     0.6,
		KnowledgeExpertCut:       0.8,
		JoinTokenTTL:             time.Hour,
		JoinTokenLength:          32,
		JudgeLatencyMinMS:        80,
		JudgeLatencyMaxMS:        150,
		GeminiModel:              "",
		MaxListLimit:             100,
	}
}
