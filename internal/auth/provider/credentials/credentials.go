// Package credentials signs users in with email and password against the
// selected backend.
package credentials

import (
	"context"
	"errors"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/auth"
)

// ErrRejected is returned when the backend refuses the credentials.
var ErrRejected = errors.New("credentials rejected")

// RejectedError carries the action result of a refused sign-in.
type RejectedError struct {
	Result actions.Result
}

func (e *RejectedError) Error() string {
	if e.Result.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Result.Message
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Authenticator is the slice of actions.Actions the provider needs.
type Authenticator interface {
	NextLogin(ctx context.Context, form actions.LoginForm) actions.Result
}

type Provider struct {
	backend Authenticator
}

func New(backend Authenticator) *Provider {
	return &Provider{backend: backend}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return auth.ProviderCredentials
}

// Authorize exchanges the form at the backend. The backend access token is
// carried on the identity.
func (p *Provider) Authorize(ctx context.Context, form actions.LoginForm) (*auth.Identity, error) {
	res := p.backend.NextLogin(ctx, form)
	if !res.Success || res.User == nil {
		return nil, &RejectedError{Result: res}
	}

	u := res.User
	return &auth.Identity{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.DisplayName(),
		AvatarURL:     u.AvatarURL,
		AccessToken:   res.AccessToken,
		Provider:      auth.ProviderCredentials,
		Organisations: u.Organisations,
	}, nil
}
