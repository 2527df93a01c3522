// Package llm defines the provider capability interface consumed by the
// debate orchestrator and the registry that resolves configured
// providers to concrete adapters.
package llm

import (
	"context"

	"github.com/symposium-ai/symposium/internal/models"
)

// Provider is the narrow capability every text-generation backend
// exposes: issue one generation call and stream its output as
// fragments.
//
// The returned channel is finite and not restartable. Connection-time
// failures surface as the error return; failures after streaming has
// begun surface as a terminal Fragment with Err set. Implementations
// must close the channel in every path and must never send after an
// error fragment.
type Provider interface {
	Name() models.ProviderID
	GenerateStream(ctx context.Context, req *models.LLMRequest) (<-chan models.Fragment, error)
	HealthCheck(ctx context.Context) error
}
