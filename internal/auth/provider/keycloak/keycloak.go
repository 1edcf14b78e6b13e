package keycloak

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "keycloak"

// Provider signs staff in through a Keycloak realm. Sessions it produces are
// finalized like any non-Google provider: the token is attached directly.
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// New initializes a Keycloak OIDC provider using discovery.
// issuer must be the realm issuer URL, e.g.
// http://localhost:8081/realms/kadabite
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	redirectURL string,
	publicBaseURL string,
) (*Provider, error) {

	if issuer == "" || clientID == "" || redirectURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	ep := oidcProvider.Endpoint()
	if publicBaseURL != "" {
		ep.AuthURL = publicAuthURL(issuer, publicBaseURL)
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Endpoint:    ep,
			Scopes: []string{
				oidc.ScopeOpenID,
				"email",
				"profile",
			},
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// publicAuthURL rewrites the realm's auth endpoint onto the browser-facing
// host when Keycloak is reached internally under a different name.
func publicAuthURL(issuer, publicBaseURL string) string {
	realm := issuer
	if i := strings.Index(issuer, "/realms/"); i >= 0 {
		realm = issuer[i:]
	}
	return strings.TrimRight(publicBaseURL, "/") + realm + "/protocol/openid-connect/auth"
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode exchanges the authorization code and returns a normalized identity.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		logger.Error("keycloak token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("keycloak did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		logger.Error("keycloak id_token verification failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	var c claims
	if err := idToken.Claims(&c); err != nil {
		return nil, fmt.Errorf("keycloak id_token claims parse failed: %w", err)
	}

	logger.Info("keycloak oidc verified", map[string]any{
		"issuer":             idToken.Issuer,
		"preferred_username": c.PreferredUsername,
		"expiry_unix":        idToken.Expiry.Unix(),
	})

	return identityFrom(c, token)
}

type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// identityFrom maps realm claims onto an identity. The realm access token is
// attached as is, since keycloak sessions are not mirrored into the backend.
func identityFrom(c claims, token *oauth2.Token) (*auth.Identity, error) {
	if c.Subject == "" || c.Email == "" {
		return nil, errors.New("keycloak id_token missing required claims")
	}

	name := c.Name
	if name == "" {
		name = c.PreferredUsername
	}

	return &auth.Identity{
		ID:                  c.Subject,
		Email:               c.Email,
		Name:                name,
		AccessToken:         token.AccessToken,
		Provider:            providerName,
		ProviderAccessToken: token.AccessToken,
	}, nil
}
