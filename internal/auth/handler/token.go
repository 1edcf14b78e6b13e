package handler

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/session"

	"github.com/gin-gonic/gin"
)

type tokenResponse struct {
	AuthToken   string `json:"authToken,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// allowedOrigin returns the request origin when it is on the allow list.
func (h *Handler) allowedOrigin(c *gin.Context) (string, bool) {
	origin := c.GetHeader("Origin")
	if origin == "" || !slices.Contains(h.opts.AllowedOrigins, origin) {
		return "", false
	}
	return origin, true
}

func cookieValue(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

// getToken hands the browser's tokens to an allowed cross-origin caller.
// The refresh token never leaves the server.
func (h *Handler) getToken(c *gin.Context) {
	origin, ok := h.allowedOrigin(c)
	if !ok {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Credentials", "true")

	authToken := cookieValue(c, session.AuthTokenCookie)
	accessToken := cookieValue(c, session.AccessTokenCookie)
	refreshToken := cookieValue(c, session.RefreshTokenCookie)

	if authToken == "" && accessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "No authentication token found",
		})
		return
	}

	if authToken == "" && refreshToken != "" && h.accessTokenExpired(c) {
		if refreshed, ok := h.refreshAccessToken(c, refreshToken); ok {
			c.JSON(http.StatusOK, tokenResponse{AccessToken: refreshed})
			return
		}
	}

	c.JSON(http.StatusOK, tokenResponse{
		AuthToken:   authToken,
		AccessToken: accessToken,
	})
}

// refreshAccessToken renews the Google access token and rewrites its
// cookies. On failure the stored tokens are served unchanged.
func (h *Handler) refreshAccessToken(c *gin.Context, refreshToken string) (string, bool) {
	refresher, ok := h.providers.Refresher(auth.ProviderGoogle)
	if !ok {
		logger.Warn("access token expired but no provider can refresh it", nil)
		return "", false
	}

	tok, err := refresher.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		logger.Error("error refreshing token", map[string]any{
			"error": err.Error(),
		})
		return "", false
	}

	opts := h.cookieOptions()
	expires := h.now().Add(h.opts.SessionTTL)
	session.SetNamedCookie(c.Writer, session.AccessTokenCookie, tok.AccessToken, expires, opts)
	if !tok.Expiry.IsZero() {
		session.SetNamedCookie(c.Writer, session.AccessTokenExpiryCookie,
			strconv.FormatInt(tok.Expiry.Unix(), 10), expires, opts)
	}
	if tok.RefreshToken != "" && tok.RefreshToken != refreshToken {
		session.SetNamedCookie(c.Writer, session.RefreshTokenCookie, tok.RefreshToken, expires, opts)
	}

	return tok.AccessToken, true
}

func (h *Handler) tokenPreflight(c *gin.Context) {
	origin, ok := h.allowedOrigin(c)
	if !ok {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Max-Age", "86400")
	c.Status(http.StatusNoContent)
}
