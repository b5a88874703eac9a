package idfed

import (
	"fmt"
	"sync"
)

// LoginKeyFunc resolves the federation-service login key for a provider,
// given the configured region and user pool.
type LoginKeyFunc func(cfg *Config) string

// ProviderRegistry maps logical login-provider names to the namespaced keys
// the identity federation service recognizes. It is safe for concurrent use.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[LoginProvider]LoginKeyFunc
}

// NewProviderRegistry creates a registry preloaded with the configured
// provider set.
func NewProviderRegistry() *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[LoginProvider]LoginKeyFunc)}
	r.providers[ProviderCognito] = func(cfg *Config) string {
		return fmt.Sprintf("cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID)
	}
	r.providers[ProviderFacebook] = staticKey("graph.facebook.com")
	r.providers[ProviderGoogle] = staticKey("accounts.google.com")
	r.providers[ProviderLoginWithAmazon] = staticKey("www.amazon.com")
	return r
}

func staticKey(key string) LoginKeyFunc {
	return func(*Config) string { return key }
}

// Register adds or replaces a provider's login-key resolver.
func (r *ProviderRegistry) Register(name LoginProvider, fn LoginKeyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = fn
}

// LoginKey resolves the login key for a provider name. Unknown names fail
// with an unknown_provider error before any network call is made.
func (r *ProviderRegistry) LoginKey(name LoginProvider, cfg *Config) (string, error) {
	r.mu.RLock()
	fn, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return "", ErrUnknownProvider(string(name))
	}
	return fn(cfg), nil
}

// Names returns the registered provider names.
func (r *ProviderRegistry) Names() []LoginProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]LoginProvider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
