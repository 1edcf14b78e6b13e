package handler

import (
	"errors"
	"net/http"

	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/metrics"
	"github.com/dominic-source/kadabite-app/internal/session"

	"github.com/gin-gonic/gin"
)

type environmentResponse struct {
	Backend   environment.Target `json:"backend"`
	Label     string             `json:"label"`
	SignedOut bool               `json:"signedOut,omitempty"`
}

type setEnvironmentRequest struct {
	Backend string `json:"backend"`
}

func (h *Handler) getEnvironment(c *gin.Context) {
	t := environment.TargetFromContext(c.Request.Context())
	c.JSON(http.StatusOK, environmentResponse{Backend: t, Label: t.Label()})
}

func (h *Handler) setEnvironment(c *gin.Context) {
	var req setEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := environment.ParseTarget(req.Backend)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown backend"})
		return
	}

	h.switchTarget(c, func(clientID, sessionID string) (environment.Target, error) {
		return t, h.selector.Set(c.Request.Context(), clientID, sessionID, t)
	})
}

func (h *Handler) toggleEnvironment(c *gin.Context) {
	h.switchTarget(c, func(clientID, sessionID string) (environment.Target, error) {
		ctx := c.Request.Context()
		return h.selector.Toggle(ctx, clientID, sessionID, environment.TargetFromContext(ctx))
	})
}

// switchTarget applies a target change. The selector signs the caller's
// session out; the browser's auth cookies are cleared here.
func (h *Handler) switchTarget(c *gin.Context, change func(clientID, sessionID string) (environment.Target, error)) {
	sessionID := cookieValue(c, session.CookieName)

	t, err := change(environment.ClientID(c), sessionID)
	if err != nil {
		if errors.Is(err, environment.ErrUnknownTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown backend"})
			return
		}
		logger.Error("failed to switch backend", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to switch backend"})
		return
	}

	environment.SetCookie(c.Writer, t, h.opts.SecureCookies)
	session.ClearCookie(c.Writer, h.cookieOptions())
	metrics.RecordBackendSwitch(string(t))

	c.JSON(http.StatusOK, environmentResponse{
		Backend:   t,
		Label:     t.Label(),
		SignedOut: sessionID != "",
	})
}
