package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dominic-source/kadabite-app/internal/audit"
	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/metrics"
	"github.com/dominic-source/kadabite-app/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state, err := h.generateState(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sign-in"})
		return
	}
	_, codeChallenge, err := h.generatePKCE(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sign-in"})
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// The provider refused or the user cancelled; send them back to start over.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.clearFlowCookies(c)
		c.Redirect(http.StatusFound, "/?error="+url.QueryEscape(errParam))
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}
	h.clearFlowCookies(c)

	identity, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Warn("oauth code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.oauthFailed(c, providerName, "", "authentication failed")
		return
	}

	// Google accounts without an email are refused.
	if identity.ProviderKind() == auth.ProviderGoogle && identity.Email == "" {
		h.oauthFailed(c, providerName, "", "sign-in refused")
		return
	}

	view, err := h.signIn(c, identity)
	if err != nil {
		logger.Error("failed to persist session", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to persist session",
		})
		return
	}

	opts := h.cookieOptions()
	if view.JWTToken != "" {
		session.SetNamedCookie(c.Writer, session.AuthTokenCookie, view.JWTToken, view.Expires, opts)
	}
	if identity.ProviderAccessToken != "" {
		session.SetNamedCookie(c.Writer, session.AccessTokenCookie, identity.ProviderAccessToken, view.Expires, opts)
	}
	if identity.ProviderRefreshToken != "" {
		session.SetNamedCookie(c.Writer, session.RefreshTokenCookie, identity.ProviderRefreshToken, view.Expires, opts)
	}
	if identity.ProviderTokenExpiry > 0 {
		session.SetNamedCookie(c.Writer, session.AccessTokenExpiryCookie,
			strconv.FormatInt(identity.ProviderTokenExpiry, 10), view.Expires, opts)
	}

	metrics.RecordSignIn(providerName, true)
	h.record(c, audit.Entry{
		Provider: providerName,
		Email:    identity.Email,
		Success:  true,
	})

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) oauthFailed(c *gin.Context, providerName, email, msg string) {
	metrics.RecordSignIn(providerName, false)
	h.record(c, audit.Entry{
		Provider: providerName,
		Email:    email,
		Success:  false,
		Message:  msg,
	})
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// accessTokenExpired reads the accessTokenExpiry cookie. A missing or
// unreadable cookie counts as not expired.
func (h *Handler) accessTokenExpired(c *gin.Context) bool {
	cookie, err := c.Request.Cookie(session.AccessTokenExpiryCookie)
	if err != nil || cookie.Value == "" {
		logger.Info("access token expiry unknown, assuming valid", nil)
		return false
	}

	unix, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil {
		logger.Warn("unreadable access token expiry", map[string]any{
			"error": err.Error(),
		})
		return false
	}

	return !h.now().Before(time.Unix(unix, 0))
}
