// Package config loads service configuration from the environment with
// an optional YAML overlay file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the symposium service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Debate  DebateConfig  `yaml:"debate"`
	History HistoryConfig `yaml:"history"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Mode         string        `yaml:"mode"` // "debug" or "release"
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	EnableCORS   bool          `yaml:"enable_cors"`
}

// ProviderSettings holds one provider's credentials and defaults.
type ProviderSettings struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LLMConfig holds settings for every supported provider.
type LLMConfig struct {
	OpenAI             ProviderSettings `yaml:"openai"`
	Anthropic          ProviderSettings `yaml:"anthropic"`
	Gemini             ProviderSettings `yaml:"gemini"`
	Mistral            ProviderSettings `yaml:"mistral"`
	Ollama             ProviderSettings `yaml:"ollama"`
	MaxConcurrentCalls int64            `yaml:"max_concurrent_calls"`
}

// DebateConfig holds orchestration defaults.
type DebateConfig struct {
	MaxRounds        int           `yaml:"max_rounds"`
	ProviderTimeout  time.Duration `yaml:"provider_timeout"`
	ModeratorEngine  string        `yaml:"moderator_engine"`
	ModeratorStyle   string        `yaml:"moderator_style"`
	AnswerTemperature float64      `yaml:"answer_temperature"`
	MaxAnswerTokens  int           `yaml:"max_answer_tokens"`
}

// HistoryConfig holds the debate history store settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// MetricsConfig holds the prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load builds the configuration from environment variables. If
// SYMPOSIUM_CONFIG points at a YAML file, its values are applied first
// and the environment overrides them.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("SYMPOSIUM_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			Mode:         "release",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // streaming responses must not be cut off
			EnableCORS:   true,
		},
		LLM: LLMConfig{
			MaxConcurrentCalls: 32,
		},
		Debate: DebateConfig{
			MaxRounds:         3,
			ProviderTimeout:   90 * time.Second,
			ModeratorEngine:   "auto",
			ModeratorStyle:    "neutral",
			AnswerTemperature: 0.7,
			MaxAnswerTokens:   1024,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "symposium.db",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Mode = getEnv("SERVER_MODE", c.Server.Mode)
	c.Server.ReadTimeout = getDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.EnableCORS = getBool("SERVER_ENABLE_CORS", c.Server.EnableCORS)

	applyProviderEnv("OPENAI", &c.LLM.OpenAI)
	applyProviderEnv("ANTHROPIC", &c.LLM.Anthropic)
	applyProviderEnv("GEMINI", &c.LLM.Gemini)
	applyProviderEnv("MISTRAL", &c.LLM.Mistral)
	applyProviderEnv("OLLAMA", &c.LLM.Ollama)

	// Ollama needs no key; a base URL or explicit enable is enough.
	if os.Getenv("OLLAMA_BASE_URL") != "" {
		c.LLM.Ollama.Enabled = true
	}

	c.LLM.MaxConcurrentCalls = getInt64("LLM_MAX_CONCURRENT_CALLS", c.LLM.MaxConcurrentCalls)

	c.Debate.MaxRounds = getInt("DEBATE_MAX_ROUNDS", c.Debate.MaxRounds)
	c.Debate.ProviderTimeout = getDuration("DEBATE_PROVIDER_TIMEOUT", c.Debate.ProviderTimeout)
	c.Debate.ModeratorEngine = getEnv("DEBATE_MODERATOR_ENGINE", c.Debate.ModeratorEngine)
	c.Debate.ModeratorStyle = getEnv("DEBATE_MODERATOR_STYLE", c.Debate.ModeratorStyle)
	c.Debate.MaxAnswerTokens = getInt("DEBATE_MAX_ANSWER_TOKENS", c.Debate.MaxAnswerTokens)

	c.History.Enabled = getBool("HISTORY_ENABLED", c.History.Enabled)
	c.History.DBPath = getEnv("HISTORY_DB_PATH", c.History.DBPath)

	c.Metrics.Enabled = getBool("METRICS_ENABLED", c.Metrics.Enabled)
}

func applyProviderEnv(prefix string, p *ProviderSettings) {
	if key := os.Getenv(prefix + "_API_KEY"); key != "" {
		p.APIKey = key
		p.Enabled = true
	}
	p.BaseURL = getEnv(prefix+"_BASE_URL", p.BaseURL)
	p.Model = getEnv(prefix+"_MODEL", p.Model)
	if v := os.Getenv(prefix + "_ENABLED"); v != "" {
		p.Enabled = parseBool(v, p.Enabled)
	}
}

func (c *Config) validate() error {
	if c.Debate.MaxRounds < 1 || c.Debate.MaxRounds > 3 {
		return fmt.Errorf("debate.max_rounds must be in [1,3], got %d", c.Debate.MaxRounds)
	}
	if c.Debate.ProviderTimeout <= 0 {
		return fmt.Errorf("debate.provider_timeout must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return parseBool(v, fallback)
	}
	return fallback
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
