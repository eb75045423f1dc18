package graph

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource provides app-only access tokens for a directory tenant.
type TokenSource interface {
	Token(ctx context.Context, tenantID string) (string, error)
}

// AppTokenSource acquires app-only tokens via the client-credentials grant
// against the tenant-specific Azure AD v2.0 token endpoint. Token sources are
// cached per tenant; the oauth2 package handles refresh before expiry.
type AppTokenSource struct {
	clientID     string
	clientSecret string

	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// NewAppTokenSource creates a token source for the given app registration.
func NewAppTokenSource(clientID, clientSecret string) *AppTokenSource {
	return &AppTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		sources:      make(map[string]oauth2.TokenSource),
	}
}

// Token returns a valid access token for the given tenant.
func (s *AppTokenSource) Token(ctx context.Context, tenantID string) (string, error) {
	s.mu.Lock()
	ts, ok := s.sources[tenantID]
	if !ok {
		cfg := &clientcredentials.Config{
			ClientID:     s.clientID,
			ClientSecret: s.clientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		ts = cfg.TokenSource(context.Background())
		s.sources[tenantID] = ts
	}
	s.mu.Unlock()

	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("acquire app token for tenant %s: %w", tenantID, err)
	}
	return tok.AccessToken, nil
}

// StaticTokenSource returns the same token for every tenant. Used in tests.
type StaticTokenSource string

// Token returns the static token.
func (s StaticTokenSource) Token(_ context.Context, _ string) (string, error) {
	return string(s), nil
}
