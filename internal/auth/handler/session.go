package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dominic-source/kadabite-app/internal/auth/deriver"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func marshalView(view deriver.Session) (json.RawMessage, error) {
	return json.Marshal(view)
}

// currentSession returns the stored session object, or the empty session
// when the caller is not signed in under the current backend.
func (h *Handler) currentSession(c *gin.Context) {
	sess, err := h.auth.Resolve(c.Request)
	if err != nil {
		if !errors.Is(err, middleware.ErrNoSession) &&
			!errors.Is(err, middleware.ErrSessionExpired) &&
			!errors.Is(err, middleware.ErrTargetMismatch) {
			logger.Error("failed to load session", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
			return
		}
		c.JSON(http.StatusOK, deriver.EmptySession())
		return
	}

	if len(sess.View) == 0 {
		c.JSON(http.StatusOK, deriver.EmptySession())
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", sess.View)
}
