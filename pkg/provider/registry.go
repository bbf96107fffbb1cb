package provider

import (
	"fmt"
	"log/slog"
)

// Registry maps model IDs to their owning provider and is immutable after
// construction, enabling lock-free concurrent reads (spec.md §5).
type Registry struct {
	providers map[string]*Provider
	models    map[string]ModelBinding
	// providerOrder preserves the binding order for listProviders/listModels.
	providerOrder []string
	modelOrder    []string
}

// NewRegistry builds a Registry from a set of ProviderBinding
// configurations. It instantiates each provider, registers every model
// into modelId -> ModelBinding, and rejects duplicate provider or model
// IDs and an empty binding set with a ConfigError / ErrEmptyRegistry.
func NewRegistry(bindings []ProviderBinding) (*Registry, error) {
	if len(bindings) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		providers: make(map[string]*Provider, len(bindings)),
		models:    make(map[string]ModelBinding),
	}

	for _, binding := range bindings {
		if binding.ID == "" {
			return nil, &ConfigError{Field: "id", Message: "provider binding is missing an id"}
		}
		if _, exists := r.providers[binding.ID]; exists {
			return nil, &ConfigError{Field: "id", Message: fmt.Sprintf("duplicate provider id: %s", binding.ID)}
		}
		if len(binding.Models) == 0 {
			return nil, &ConfigError{Field: "models", Message: fmt.Sprintf("provider %s declares no models", binding.ID)}
		}

		p := newProvider(binding)
		r.providers[binding.ID] = p
		r.providerOrder = append(r.providerOrder, binding.ID)

		for _, m := range binding.Models {
			if m.ID == "" {
				return nil, &ConfigError{Field: "models.id", Message: fmt.Sprintf("provider %s declares a model with an empty id", binding.ID)}
			}
			if _, exists := r.models[m.ID]; exists {
				return nil, &ConfigError{Field: "models.id", Message: fmt.Sprintf("duplicate model id: %s", m.ID)}
			}
			r.models[m.ID] = ModelBinding{
				ModelID:        m.ID,
				ProviderID:     binding.ID,
				ProviderModel:  m.ProviderModel,
				Description:    m.Description,
				FallbackModels: m.FallbackModels,
			}
			r.modelOrder = append(r.modelOrder, m.ID)
		}
	}

	slog.Info("provider registry constructed", "providers", len(r.providers), "models", len(r.models))
	return r, nil
}

// GetModel returns the ModelBinding for modelID, if registered.
func (r *Registry) GetModel(modelID string) (ModelBinding, bool) {
	b, ok := r.models[modelID]
	return b, ok
}

// GetProvider returns the Provider for providerID, if registered.
func (r *Registry) GetProvider(providerID string) (*Provider, bool) {
	p, ok := r.providers[providerID]
	return p, ok
}

// ListModels returns every registered model ID, binding order preserved.
func (r *Registry) ListModels() []string {
	out := make([]string, len(r.modelOrder))
	copy(out, r.modelOrder)
	return out
}

// ListProviders returns every registered provider ID, binding order
// preserved.
func (r *Registry) ListProviders() []string {
	out := make([]string, len(r.providerOrder))
	copy(out, r.providerOrder)
	return out
}
