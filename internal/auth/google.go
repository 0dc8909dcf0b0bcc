package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleProviderName = "google"

// GoogleProvider handles Google OAuth 2.0 / OIDC authentication.
type GoogleProvider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider creates a GoogleProvider against the live Google issuer.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	return &GoogleProvider{
		config:   config,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Name returns the provider identifier used by the registry.
func (g *GoogleProvider) Name() string {
	return googleProviderName
}

// AuthURL generates the Google OAuth consent URL with the given state.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange exchanges the authorization code for tokens, verifies the ID
// token, and returns normalized claims.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in response")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var raw struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if raw.Sub == "" {
		return nil, fmt.Errorf("id_token missing subject")
	}

	return &Claims{
		Subject: raw.Sub,
		Name:    raw.Name,
		Email:   raw.Email,
		Picture: raw.Picture,
	}, nil
}
