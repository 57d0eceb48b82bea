package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrProviderNotRegistered is returned when OAuthResolver has no source for a provider.
var ErrProviderNotRegistered = errors.New("oauth resolver: provider not registered")

// TokenSourceFactory builds an oauth2.TokenSource for a provider, typically
// wrapping a client-credentials or refresh-token flow.
type TokenSourceFactory func(ctx context.Context) oauth2.TokenSource

// OAuthResolver resolves short-lived OAuth access tokens per provider, caching
// and refreshing them via the standard oauth2.TokenSource contract so callers
// never see an expired token. It satisfies agent.APIKeyResolver's signature.
type OAuthResolver struct {
	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// NewOAuthResolver creates an empty resolver; register provider sources with RegisterClientCredentials.
func NewOAuthResolver() *OAuthResolver {
	return &OAuthResolver{sources: map[string]oauth2.TokenSource{}}
}

// RegisterClientCredentials wires a provider to the OAuth2 client-credentials flow,
// the common pattern for machine-to-machine provider access (e.g. Bedrock-fronted
// gateways, enterprise LLM proxies requiring a bearer token instead of a static key).
func (r *OAuthResolver) RegisterClientCredentials(ctx context.Context, provider string, cfg clientcredentials.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[provider] = cfg.TokenSource(ctx)
}

// RegisterSource wires a provider to an arbitrary TokenSourceFactory, useful for
// tests or refresh-token-backed flows.
func (r *OAuthResolver) RegisterSource(provider string, factory TokenSourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[provider] = factory(context.Background())
}

// Resolve returns a valid access token for provider, refreshing it if expired.
// Matches the agent.APIKeyResolver signature so it can be installed directly
// via agent.WithAPIKeyResolver.
func (r *OAuthResolver) Resolve(ctx context.Context, provider string) (string, error) {
	r.mu.Lock()
	source, ok := r.sources[provider]
	r.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProviderNotRegistered, provider)
	}
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("oauth resolver: refresh token for %s: %w", provider, err)
	}
	return token.AccessToken, nil
}

// staticTokenSource always returns the same token, used by tests and by
// providers configured with a long-lived static credential.
type staticTokenSource struct {
	token *oauth2.Token
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	if s.token.Expiry.IsZero() || s.token.Expiry.After(time.Now()) {
		return s.token, nil
	}
	return nil, fmt.Errorf("oauth resolver: static token expired at %s", s.token.Expiry)
}

// StaticToken returns a TokenSourceFactory that always yields accessToken.
func StaticToken(accessToken string) TokenSourceFactory {
	return func(ctx context.Context) oauth2.TokenSource {
		return staticTokenSource{token: &oauth2.Token{AccessToken: accessToken}}
	}
}
