package provider

import (
	"context"

	"github.com/dominic-source/kadabite-app/internal/auth"

	"golang.org/x/oauth2"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not create sessions or call the backends.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider credentials
	// and returns a normalized identity.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, error)
}

// Refresher is implemented by providers that can renew an access token
// from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
