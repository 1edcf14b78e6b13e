package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/audit"
	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/auth/deriver"
	"github.com/dominic-source/kadabite-app/internal/auth/provider"
	"github.com/dominic-source/kadabite-app/internal/auth/provider/credentials"
	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/middleware"
	"github.com/dominic-source/kadabite-app/internal/screen"
	"github.com/dominic-source/kadabite-app/internal/session"

	"github.com/gin-gonic/gin"
)

// TokenRoute answers its own CORS; callers keep generic CORS middleware off it.
const TokenRoute = "/api/get-token"

// CredentialsChecker runs the GraphQL login pre-check.
type CredentialsChecker interface {
	CredentialsAuth(ctx context.Context, form actions.LoginForm) actions.Result
}

// Options are the request-independent settings of the routes.
type Options struct {
	AllowedOrigins []string
	SessionTTL     time.Duration
	SecureCookies  bool
}

// Deps wires the handler.
type Deps struct {
	Providers   *provider.Registry
	Sessions    session.Store
	Auth        *middleware.AuthMiddleware
	Deriver     *deriver.Deriver
	Checker     CredentialsChecker
	Credentials *credentials.Provider
	Selector    *environment.Selector
	Audit       audit.Recorder
	Scheduler   screen.Scheduler
}

type Handler struct {
	providers    *provider.Registry
	sessionStore session.Store
	auth         *middleware.AuthMiddleware
	deriver      *deriver.Deriver
	checker      CredentialsChecker
	credentials  *credentials.Provider
	selector     *environment.Selector
	audit        audit.Recorder
	scheduler    screen.Scheduler
	opts         Options
	now          func() time.Time
}

func NewHandler(deps Deps, opts Options) *Handler {
	if deps.Audit == nil {
		deps.Audit = audit.NopRecorder{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = screen.RealScheduler
	}
	if deps.Auth == nil {
		deps.Auth = middleware.NewAuthMiddleware(deps.Sessions)
	}
	return &Handler{
		providers:    deps.Providers,
		sessionStore: deps.Sessions,
		auth:         deps.Auth,
		deriver:      deps.Deriver,
		checker:      deps.Checker,
		credentials:  deps.Credentials,
		selector:     deps.Selector,
		audit:        deps.Audit,
		scheduler:    deps.Scheduler,
		opts:         opts,
		now:          time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.callback)

	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)

	r.GET(TokenRoute, h.getToken)
	r.OPTIONS(TokenRoute, h.tokenPreflight)

	api := r.Group("/api")
	api.GET("/session", h.currentSession)

	api.GET("/environment", h.getEnvironment)
	api.PUT("/environment", h.setEnvironment)
	api.POST("/environment/toggle", h.toggleEnvironment)

	api.GET("/screens/flash", h.flashStream)
	api.GET("/screens/redirect", h.redirectStream)

	protected := api.Group("", middleware.GinRequireAuth(h.auth))
	protected.GET("/me", h.me)

	for _, route := range r.Routes() {
		logger.Info("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func (h *Handler) cookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// signIn derives and persists the session for identity and issues the
// session cookie. The session is bound to the request's backend target.
func (h *Handler) signIn(c *gin.Context, identity *auth.Identity) (deriver.Session, error) {
	ctx := c.Request.Context()
	now := h.now()
	expiresAt := now.Add(h.opts.SessionTTL)

	view := h.deriver.Derive(ctx, identity, expiresAt)
	raw, err := marshalView(view)
	if err != nil {
		return deriver.Session{}, err
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		return deriver.Session{}, err
	}

	sess := session.Session{
		SessionID: sessionID,
		UserID:    identity.ID,
		Provider:  identity.Provider,
		Backend:   string(environment.TargetFromContext(ctx)),
		View:      raw,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := h.sessionStore.Create(ctx, sess); err != nil {
		return deriver.Session{}, err
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, h.cookieOptions())

	logger.Info("sign-in succeeded", map[string]any{
		"provider": identity.Provider,
		"user_id":  identity.ID,
		"backend":  sess.Backend,
		"degraded": view.JWTToken == "",
		"ip":       c.ClientIP(),
	})

	return view, nil
}

// record writes the audit entry; failures are only logged.
func (h *Handler) record(c *gin.Context, e audit.Entry) {
	e.Backend = string(environment.TargetFromContext(c.Request.Context()))
	if err := h.audit.Record(c.Request.Context(), e); err != nil {
		logger.Warn("failed to record sign-in", map[string]any{
			"provider": e.Provider,
			"error":    err.Error(),
		})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort; the cookies are cleared regardless
		if err := h.sessionStore.Delete(c.Request.Context(), cookie.Value); err != nil {
			logger.Warn("failed to delete session on logout", map[string]any{
				"error": err.Error(),
			})
		} else {
			logger.Info("signed out", map[string]any{
				"ip": c.ClientIP(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.cookieOptions())

	// idempotent
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
	})
}
