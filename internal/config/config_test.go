package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Debate.MaxRounds)
	assert.Equal(t, 90*time.Second, cfg.Debate.ProviderTimeout)
	assert.Equal(t, "auto", cfg.Debate.ModeratorEngine)
	assert.Equal(t, int64(32), cfg.LLM.MaxConcurrentCalls)
	assert.True(t, cfg.History.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DEBATE_MAX_ROUNDS", "2")
	t.Setenv("DEBATE_PROVIDER_TIMEOUT", "45s")
	t.Setenv("LLM_MAX_CONCURRENT_CALLS", "8")
	t.Setenv("HISTORY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Debate.MaxRounds)
	assert.Equal(t, 45*time.Second, cfg.Debate.ProviderTimeout)
	assert.Equal(t, int64(8), cfg.LLM.MaxConcurrentCalls)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_ProviderEnablement(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-custom")
	t.Setenv("OLLAMA_BASE_URL", "http://localhost:11434")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.LLM.OpenAI.Enabled)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.True(t, cfg.LLM.Anthropic.Enabled)
	assert.Equal(t, "claude-custom", cfg.LLM.Anthropic.Model)

	// Ollama needs no key.
	assert.True(t, cfg.LLM.Ollama.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)

	assert.False(t, cfg.LLM.Gemini.Enabled)
	assert.False(t, cfg.LLM.Mistral.Enabled)
}

func TestLoad_ExplicitDisableWinsOverKey(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "mk-test")
	t.Setenv("MISTRAL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Mistral.Enabled)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "7070"
debate:
  max_rounds: 1
  moderator_style: analytical
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("SYMPOSIUM_CONFIG", path)
	t.Setenv("SERVER_PORT", "7171") // env wins over file

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7171", cfg.Server.Port)
	assert.Equal(t, 1, cfg.Debate.MaxRounds)
	assert.Equal(t, "analytical", cfg.Debate.ModeratorStyle)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("DEBATE_MAX_ROUNDS", "7")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_rounds")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("SYMPOSIUM_CONFIG", "/nonexistent/config.yaml")

	_, err := Load()
	assert.Error(t, err)
}
