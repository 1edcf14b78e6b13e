package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	providerName = auth.ProviderGoogle
	issuer       = "https://accounts.google.com"
)

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	return newProvider(
		oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
		&oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes: []string{
				oidc.ScopeOpenID,
				"profile",
				"email",
			},
		},
	), nil
}

func newProvider(verifier *oidc.IDTokenVerifier, cfg *oauth2.Config) *Provider {
	return &Provider{oauthConfig: cfg, verifier: verifier}
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the authorization URL. Consent is always prompted and
// offline access requested so Google issues a refresh token.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

type claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

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
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var c claims
	if err := idToken.Claims(&c); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	logger.Info("google oidc verified", map[string]any{
		"issuer":          idToken.Issuer,
		"subject_present": c.Subject != "",
		"email_present":   c.Email != "",
		"email_verified":  c.EmailVerified,
		"expiry_unix":     idToken.Expiry.Unix(),
	})

	return identityFrom(c, token)
}

// identityFrom applies the Google sign-in gate: a profile without an email
// is refused.
func identityFrom(c claims, token *oauth2.Token) (*auth.Identity, error) {
	if c.Subject == "" || c.Email == "" {
		return nil, errors.New("google id_token missing required claims")
	}

	id := &auth.Identity{
		ID:                   c.Subject,
		Email:                c.Email,
		Name:                 c.Name,
		AvatarURL:            c.Picture,
		Provider:             providerName,
		ProviderAccessToken:  token.AccessToken,
		ProviderRefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		id.ProviderTokenExpiry = token.Expiry.Unix()
	}
	return id, nil
}

// Refresh exchanges a refresh token for a new access token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("google refresh token is empty")
	}

	// An already-expired token forces the source to hit the token endpoint.
	src := p.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})

	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("google token refresh failed: %w", err)
	}
	return tok, nil
}
