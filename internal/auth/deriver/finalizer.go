package deriver

import (
	"context"
	"errors"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/auth"
)

var errMirrorFailed = errors.New("deriver: backend mirror failed")

// Finalizer decides whether a freshly encoded token is attached to the
// session. There is one per provider kind.
type Finalizer interface {
	Finalize(ctx context.Context, identity *auth.Identity, names auth.Names, jwtToken string) (string, error)
}

// FinalizerFunc adapts a function to Finalizer.
type FinalizerFunc func(ctx context.Context, identity *auth.Identity, names auth.Names, jwtToken string) (string, error)

func (f FinalizerFunc) Finalize(ctx context.Context, identity *auth.Identity, names auth.Names, jwtToken string) (string, error) {
	return f(ctx, identity, names, jwtToken)
}

// AttachFinalizer attaches the token as is.
var AttachFinalizer = FinalizerFunc(func(_ context.Context, _ *auth.Identity, _ auth.Names, jwtToken string) (string, error) {
	return jwtToken, nil
})

// GoogleAuthenticator is the slice of actions.Actions the Google finalizer needs.
type GoogleAuthenticator interface {
	GoogleAuth(ctx context.Context, args actions.GoogleAuthArgs) actions.Result
}

// MirrorFinalizer mirrors the identity into the backend through
// thirdPartyLogin and attaches the token only when the backend accepted it.
type MirrorFinalizer struct {
	Backend GoogleAuthenticator
}

func (m MirrorFinalizer) Finalize(ctx context.Context, identity *auth.Identity, names auth.Names, jwtToken string) (string, error) {
	res := m.Backend.GoogleAuth(ctx, actions.GoogleAuthArgs{
		JWTToken:   jwtToken,
		Email:      identity.Email,
		FirstName:  names.First,
		LastName:   names.Last,
		MiddleName: names.Middle,
		AvatarURL:  identity.AvatarURL,
	})
	if !res.Success {
		return "", errors.Join(errMirrorFailed, errors.New(res.Message))
	}
	return jwtToken, nil
}
