package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/session"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")
	// ErrTargetMismatch means the session was issued under another backend.
	ErrTargetMismatch = errors.New("session issued for a different backend")
)

// unexported, collision-proof context keys
type userIDContextKeyType struct{}
type sessionContextKeyType struct{}

var (
	userIDKey  = userIDContextKeyType{}
	sessionKey = sessionContextKeyType{}
)

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// SessionFromContext returns the session attached by RequireAuth.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

type AuthMiddleware struct {
	Store session.Store
	now   func() time.Time
}

func NewAuthMiddleware(store session.Store) *AuthMiddleware {
	return &AuthMiddleware{Store: store, now: time.Now}
}

// Resolve loads the session named by the request cookie. Expired sessions
// and sessions bound to a backend other than the request's target are
// deleted and rejected. The target must already be on the request context.
func (a *AuthMiddleware) Resolve(r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	ctx := r.Context()
	sessionID := cookie.Value

	sess, err := a.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	if !a.now().Before(sess.ExpiresAt) {
		_ = a.Store.Delete(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	target := environment.TargetFromContext(ctx)
	if sess.Backend != string(target) {
		_ = a.Store.Delete(ctx, sessionID)
		logger.Warn("session rejected for backend mismatch", map[string]any{
			"session_backend": sess.Backend,
			"request_backend": string(target),
		})
		return nil, ErrTargetMismatch
	}

	return sess, nil
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.Resolve(r)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				logger.Info("request unauthorized", map[string]any{
					"path":  r.URL.Path,
					"error": err.Error(),
				})
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		ctx = context.WithValue(ctx, sessionKey, sess)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
