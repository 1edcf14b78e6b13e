package environment

import (
	"net/http"
	"time"

	"github.com/dominic-source/kadabite-app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// BackendCookie carries the target across the server request boundary.
	BackendCookie = "backend"
	// ClientCookie identifies the browser whose preference is persisted.
	ClientCookie = "__client_id"

	clientCookieTTL = 365 * 24 * time.Hour
)

// ClientID returns the id assigned by Middleware.
func ClientID(c *gin.Context) string {
	return c.GetString(ClientCookie)
}

// Middleware resolves the request's backend target and stores it on the
// request context. The backend cookie wins; otherwise the persisted
// preference is used and the cookie is re-issued.
func Middleware(s *Selector, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ""
		if cookie, err := c.Request.Cookie(ClientCookie); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				clientID = cookie.Value
			}
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     ClientCookie,
				Value:    clientID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(clientCookieTTL.Seconds()),
			})
		}
		c.Set(ClientCookie, clientID)

		target, fromCookie := Unset, false
		if cookie, err := c.Request.Cookie(BackendCookie); err == nil {
			if t, err := ParseTarget(cookie.Value); err == nil {
				target, fromCookie = t, true
			}
		}

		if !fromCookie {
			t, err := s.Get(c.Request.Context(), clientID)
			if err != nil {
				logger.Warn("failed to load backend preference", map[string]any{
					"error": err.Error(),
				})
			}
			target = t
			SetCookie(c.Writer, target, secure)
		}

		ctx := WithTarget(c.Request.Context(), target)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SetCookie writes the backend cookie.
func SetCookie(w http.ResponseWriter, t Target, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     BackendCookie,
		Value:    string(t),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
