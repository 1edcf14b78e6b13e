package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"3000"`

	// AuthSecret signs the session artifact handed to the backends.
	AuthSecret string `envconfig:"AUTH_SECRET"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`

	// Keycloak is optional; it is registered only when an issuer is set.
	KeycloakIssuer        string `envconfig:"KEYCLOAK_ISSUER"`
	KeycloakClientID      string `envconfig:"KEYCLOAK_CLIENT_ID"`
	KeycloakRedirectURL   string `envconfig:"KEYCLOAK_REDIRECT_URL"`
	KeycloakPublicBaseURL string `envconfig:"KEYCLOAK_PUBLIC_BASE_URL"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	BackendDefaultURL string        `envconfig:"BACKEND_DEFAULT_URL"`
	BackendPythonURL  string        `envconfig:"BACKEND_PYTHON_URL"`
	BackendNodeURL    string        `envconfig:"BACKEND_NODE_URL"`
	BackendTimeout    time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	BackendRetries    uint          `envconfig:"BACKEND_RETRIES" default:"3"`

	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SecureCookies bool          `envconfig:"SECURE_COOKIES" default:"true"`

	// Empty RedisAddr selects in-memory stores.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Empty DatabaseDSN disables the sign-in audit trail.
	DatabaseDSN string `envconfig:"DATABASE_DSN"`

	WebDir string `envconfig:"WEB_DIR" default:"./web"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load() // no error if .env doesn't exist

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if c.AuthSecret == "" {
		return fmt.Errorf("config: AUTH_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}

// GoogleEnabled reports whether the Google provider has enough settings to start.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
