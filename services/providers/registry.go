package providers

import (
	"errors"
	"sync"
)

var (
	// ErrProviderNotFound is returned when no provider is registered for a kind
	ErrProviderNotFound = errors.New("no provider registered for service kind")

	// ErrProviderAlreadyRegistered is returned when a kind already has a provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered for service kind")
)

// Registry maps service kinds to provider instances. One provider may serve
// several kinds (the LLM provider handles both generation and embedding).
type Registry struct {
	mu        sync.RWMutex
	providers map[Kind]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[Kind]Provider),
	}
}

// Register binds a provider to a service kind
func (r *Registry) Register(kind Kind, provider Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[kind]; exists {
		return ErrProviderAlreadyRegistered
	}
	r.providers[kind] = provider
	return nil
}

// Get retrieves the provider for a service kind
func (r *Registry) Get(kind Kind) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[kind]
	if !exists {
		return nil, ErrProviderNotFound
	}
	return provider, nil
}

// Kinds returns all service kinds with a registered provider
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	return kinds
}
