package llm

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/internal/config"
	"github.com/symposium-ai/symposium/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNewRegistry_EnabledProvidersOnly(t *testing.T) {
	cfg := &config.LLMConfig{
		OpenAI:    config.ProviderSettings{Enabled: true, APIKey: "sk-test"},
		Anthropic: config.ProviderSettings{Enabled: true}, // no key, skipped
		Ollama:    config.ProviderSettings{Enabled: true}, // no key needed
	}
	r := NewRegistry(cfg, testLogger())

	assert.True(t, r.Has(models.ProviderOpenAI))
	assert.False(t, r.Has(models.ProviderAnthropic))
	assert.True(t, r.Has(models.ProviderOllama))
	assert.False(t, r.Has(models.ProviderGemini))

	assert.Equal(t, []models.ProviderID{models.ProviderOllama, models.ProviderOpenAI}, r.Available())
}

func TestRegistry_Get(t *testing.T) {
	cfg := &config.LLMConfig{
		Mistral: config.ProviderSettings{Enabled: true, APIKey: "mk-test"},
	}
	r := NewRegistry(cfg, testLogger())

	p, err := r.Get(models.ProviderMistral)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderMistral, p.Name())

	_, err = r.Get(models.ProviderGemini)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestRegistry_Any(t *testing.T) {
	empty := NewRegistry(&config.LLMConfig{}, testLogger())
	_, err := empty.Any()
	assert.Error(t, err)

	cfg := &config.LLMConfig{
		Ollama: config.ProviderSettings{Enabled: true},
	}
	r := NewRegistry(cfg, testLogger())
	p, err := r.Any()
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOllama, p.Name())
}

func TestCallLimiter(t *testing.T) {
	limiter := NewCallLimiter(2)

	require.NoError(t, limiter.Acquire(context.Background()))
	require.NoError(t, limiter.Acquire(context.Background()))

	// Third slot only frees up after a release.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Acquire(ctx))

	limiter.Release()
	require.NoError(t, limiter.Acquire(context.Background()))

	limiter.Release()
	limiter.Release()
}

func TestCallLimiter_Disabled(t *testing.T) {
	limiter := NewCallLimiter(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A disabled limiter never blocks, even with a dead context.
	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Acquire(ctx))
	}
	limiter.Release()
}
