package app

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/auth/deriver"
	"github.com/dominic-source/kadabite-app/internal/auth/handler"
	"github.com/dominic-source/kadabite-app/internal/auth/provider"
	"github.com/dominic-source/kadabite-app/internal/auth/provider/credentials"
	"github.com/dominic-source/kadabite-app/internal/auth/provider/google"
	"github.com/dominic-source/kadabite-app/internal/auth/provider/keycloak"
	"github.com/dominic-source/kadabite-app/internal/auth/token"
	"github.com/dominic-source/kadabite-app/internal/backend"
	"github.com/dominic-source/kadabite-app/internal/config"
	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/middleware"
	"github.com/dominic-source/kadabite-app/internal/screen"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	client := backend.NewClient(backend.Options{
		Timeout: cfg.BackendTimeout,
		Retries: cfg.BackendRetries,
	})
	acts := actions.New(client, environment.BaseURLs{
		Default: cfg.BackendDefaultURL,
		Python:  cfg.BackendPythonURL,
		Node:    cfg.BackendNodeURL,
	})

	selector := environment.NewSelector(infra.Preferences, infra.Sessions)

	providers, err := setupProviders(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	sessionDeriver := deriver.New(
		token.NewEncoder(cfg.AuthSecret),
		map[string]deriver.Finalizer{
			auth.ProviderGoogle: deriver.MirrorFinalizer{Backend: acts},
		},
	)

	authHandler := handler.NewHandler(handler.Deps{
		Providers:   providers,
		Sessions:    infra.Sessions,
		Auth:        middleware.NewAuthMiddleware(infra.Sessions),
		Deriver:     sessionDeriver,
		Checker:     acts,
		Credentials: credentials.New(acts),
		Selector:    selector,
		Audit:       infra.Audit,
		Scheduler:   screen.RealScheduler,
	}, handler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.SecureCookies,
	})

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Except(
		middleware.GinWrap(middleware.CORS(cfg.AllowedOrigins)),
		handler.TokenRoute,
	))
	router.Use(environment.Middleware(selector, cfg.SecureCookies))

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static("/static", cfg.WebDir)
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.WebDir, "index.html"))
	})

	return router, infra.Close, nil
}

// setupProviders registers Google and Keycloak when they are configured.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		p, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.KeycloakIssuer != "" {
		p, err := keycloak.New(
			ctx,
			cfg.KeycloakIssuer,
			cfg.KeycloakClientID,
			cfg.KeycloakRedirectURL,
			cfg.KeycloakPublicBaseURL,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	registry := provider.NewRegistry(list...)
	logger.Info("oauth providers ready", map[string]any{
		"providers": registry.Names(),
	})
	return registry, nil
}
