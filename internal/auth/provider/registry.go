package provider

import "fmt"

// Registry holds the configured identity providers keyed by name.
// It performs no auth logic itself; adding a provider means writing
// one implementation and listing it here.
type Registry struct {
	providers map[string]OAuthProvider
}

// NewRegistry registers the given providers by name.
// Provider names must be unique.
func NewRegistry(list ...OAuthProvider) *Registry {
	m := make(map[string]OAuthProvider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider by name or an error if not registered.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return p, nil
}
