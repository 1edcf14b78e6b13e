// Package deriver turns an authenticated identity into the session object
// handed to the client.
package deriver

import (
	"context"
	"time"

	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/metrics"
)

// TokenEncoder signs the session artifact. token.Encoder satisfies it.
type TokenEncoder interface {
	Encode(subject, email, accessToken string, expiresAt time.Time) (string, error)
}

// Deriver builds sessions. Derive never fails: signing or mirroring
// problems are logged and yield a session without a jwt_token.
type Deriver struct {
	encoder    TokenEncoder
	finalizers map[string]Finalizer
	fallback   Finalizer
}

// New creates a Deriver. finalizers is keyed by Identity.ProviderKind();
// kinds without an entry attach the token directly.
func New(encoder TokenEncoder, finalizers map[string]Finalizer) *Deriver {
	if finalizers == nil {
		finalizers = map[string]Finalizer{}
	}
	return &Deriver{
		encoder:    encoder,
		finalizers: finalizers,
		fallback:   AttachFinalizer,
	}
}

func (d *Deriver) finalizer(kind string) Finalizer {
	if f, ok := d.finalizers[kind]; ok {
		return f
	}
	return d.fallback
}

// Derive returns the session for identity expiring at expires.
func (d *Deriver) Derive(ctx context.Context, identity *auth.Identity, expires time.Time) Session {
	if identity == nil || identity.ID == "" {
		return EmptySession()
	}

	names := auth.SplitName(identity.Name)

	sess := Session{
		User: User{
			ID:         identity.ID,
			FirstName:  names.First,
			LastName:   names.Last,
			MiddleName: names.Middle,
			Image:      identity.AvatarURL,
			Email:      identity.Email,
		},
		AccessToken: identity.AccessToken,
		UserOrg:     identity.Organisations,
		Expires:     expires,
	}

	jwtToken, err := d.encoder.Encode(identity.ID, identity.Email, identity.AccessToken, expires)
	if err != nil {
		logger.Error("failed to encode session token", map[string]any{
			"provider": identity.Provider,
			"error":    err.Error(),
		})
		metrics.RecordDegradedSession("encode")
		return sess
	}

	kind := identity.ProviderKind()
	attached, err := d.finalizer(kind).Finalize(ctx, identity, names, jwtToken)
	if err != nil {
		logger.Warn("session finalization failed, continuing without token", map[string]any{
			"provider": identity.Provider,
			"kind":     kind,
			"error":    err.Error(),
		})
		metrics.RecordDegradedSession("mirror")
		return sess
	}

	sess.JWTToken = attached
	return sess
}
