package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds the complete runtime configuration.
// Field tags serve viper (mapstructure) and `config show` (yaml).
type Config struct {
	Analysis     AnalysisConfig     `mapstructure:"analysis" yaml:"analysis"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Audit        AuditConfig        `mapstructure:"audit" yaml:"audit"`
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
}

// AnalysisConfig controls the clause engine
type AnalysisConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // concurrent clause workers (1 = sequential)
}

// HTTPConfig controls fetching contracts from URLs
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	InsecureTLS   bool          `mapstructure:"insecure_tls" yaml:"insecure_tls"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy       string        `mapstructure:"no_proxy" yaml:"no_proxy"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
}

// RateLimitingConfig is applied per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// CacheConfig controls the memory+disk cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// AuditConfig selects where audit records go
type AuditConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Backend    string `mapstructure:"backend" yaml:"backend"` // "file" or "sqlite"
	Dir        string `mapstructure:"dir" yaml:"dir"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// LLMConfig configures the optional plain-language summary
type LLMConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"` // "", "openai", "anthropic", "ollama"
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"-"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	Timeout   int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	Strict    bool   `mapstructure:"strict" yaml:"strict"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	IncludeFooter bool `mapstructure:"include_footer" yaml:"include_footer"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// MetricsConfig controls the Prometheus endpoint (watch mode)
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".clauserisk")

	return &Config{
		Analysis: AnalysisConfig{
			Workers: runtime.NumCPU(),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "ClauseRisk/0.1 (+https://github.com/ppiankov/clauserisk)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			Backend:    "file",
			Dir:        "logs",
			SQLitePath: filepath.Join(base, "audit.db"),
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
			Strict:    true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must be positive, got %v", c.RateLimiting.RequestsPerSecond)
	}
	switch c.Audit.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("audit.backend must be file or sqlite, got %q", c.Audit.Backend)
	}
	switch c.LLM.Provider {
	case "", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("llm.provider must be openai, anthropic or ollama, got %q", c.LLM.Provider)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
