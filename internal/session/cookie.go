package session

import (
	"net/http"
	"time"
)

const (
	CookieName = "__Host-session"

	// Token cookies read by the token retrieval route.
	AuthTokenCookie         = "authToken"
	AccessTokenCookie       = "accessToken"
	RefreshTokenCookie      = "refreshToken"
	AccessTokenExpiryCookie = "accessTokenExpiry"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookie issues the session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	sessionID string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	SetNamedCookie(w, CookieName, sessionID, expiresAt, opts)
}

// SetNamedCookie issues any auth cookie with the session defaults.
func SetNamedCookie(
	w http.ResponseWriter,
	name string,
	value string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie and every token cookie.
func ClearCookie(
	w http.ResponseWriter,
	opts CookieOptions,
) {
	opts = opts.normalize()

	for _, name := range []string{
		CookieName,
		AuthTokenCookie,
		AccessTokenCookie,
		RefreshTokenCookie,
		AccessTokenExpiryCookie,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     opts.Path,
			Domain:   opts.Domain,
			MaxAge:   -1,
			HttpOnly: opts.HttpOnly,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
	}
}
