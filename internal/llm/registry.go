package llm

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/symposium-ai/symposium/internal/config"
	"github.com/symposium-ai/symposium/internal/llm/providers/anthropic"
	"github.com/symposium-ai/symposium/internal/llm/providers/gemini"
	"github.com/symposium-ai/symposium/internal/llm/providers/mistral"
	"github.com/symposium-ai/symposium/internal/llm/providers/ollama"
	"github.com/symposium-ai/symposium/internal/llm/providers/openai"
	"github.com/symposium-ai/symposium/internal/models"
)

// Registry resolves provider identifiers to configured adapters. It is
// built once at startup and read-only afterwards.
type Registry struct {
	providers map[models.ProviderID]Provider
	logger    *logrus.Logger
}

// NewRegistry builds adapters for every enabled provider in cfg.
func NewRegistry(cfg *config.LLMConfig, logger *logrus.Logger) *Registry {
	r := &Registry{
		providers: make(map[models.ProviderID]Provider),
		logger:    logger,
	}

	for _, id := range models.AllProviderIDs() {
		p, ok := buildProvider(id, cfg)
		if !ok {
			continue
		}
		r.providers[id] = p
		logger.WithField("provider", id).Info("Registered LLM provider")
	}

	return r
}

// buildProvider constructs the adapter for one provider identifier. The
// switch is exhaustive over the closed ProviderID set.
func buildProvider(id models.ProviderID, cfg *config.LLMConfig) (Provider, bool) {
	switch id {
	case models.ProviderOpenAI:
		if !cfg.OpenAI.Enabled || cfg.OpenAI.APIKey == "" {
			return nil, false
		}
		return openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), true
	case models.ProviderAnthropic:
		if !cfg.Anthropic.Enabled || cfg.Anthropic.APIKey == "" {
			return nil, false
		}
		return anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Model), true
	case models.ProviderGemini:
		if !cfg.Gemini.Enabled || cfg.Gemini.APIKey == "" {
			return nil, false
		}
		return gemini.NewProvider(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model), true
	case models.ProviderMistral:
		if !cfg.Mistral.Enabled || cfg.Mistral.APIKey == "" {
			return nil, false
		}
		return mistral.NewProvider(cfg.Mistral.APIKey, cfg.Mistral.BaseURL, cfg.Mistral.Model), true
	case models.ProviderOllama:
		if !cfg.Ollama.Enabled {
			return nil, false
		}
		return ollama.NewProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), true
	default:
		return nil, false
	}
}

// Get returns the adapter for id.
func (r *Registry) Get(id models.ProviderID) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s is not configured", id)
	}
	return p, nil
}

// Has reports whether id has a configured adapter.
func (r *Registry) Has(id models.ProviderID) bool {
	_, ok := r.providers[id]
	return ok
}

// Available lists configured provider identifiers in stable order.
func (r *Registry) Available() []models.ProviderID {
	ids := make([]models.ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Any returns an arbitrary configured adapter, preferring the stable
// enumeration order. Used as the moderator fallback when the requested
// engine is unavailable.
func (r *Registry) Any() (Provider, error) {
	for _, id := range models.AllProviderIDs() {
		if p, ok := r.providers[id]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no providers are configured")
}

// Register adds or replaces an adapter. Intended for tests and for
// wiring fake panels in the in-process harness.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}
