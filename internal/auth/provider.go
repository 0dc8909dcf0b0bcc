package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Claims is a normalized identity assertion from an external provider.
// Subject is the provider-scoped stable identifier; the profile fields are
// optional hints consumed only on first login.
type Claims struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// Provider abstracts one configured identity provider's OAuth dance.
type Provider interface {
	// Name returns the provider identifier, e.g. "google" or "kakao".
	Name() string

	// AuthURL builds the provider's consent URL carrying the CSRF state.
	AuthURL(state string) string

	// Exchange trades the authorization code for verified identity claims.
	Exchange(ctx context.Context, code string) (*Claims, error)
}

// Registry holds the configured provider set and resolves them by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers by name.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider by name or an error if not configured.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider %q", name)
	}
	return p, nil
}

// GenerateState generates a cryptographically secure random state string.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
