// Package token encodes the signed session artifact that lets the client
// and the backends assert an authenticated identity.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret  = errors.New("token: signing secret is empty")
	ErrMissingSubject = errors.New("token: subject is empty")
	ErrInvalidToken   = errors.New("token: invalid token")
)

// Claims carried by a session token.
type Claims struct {
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	jwt.RegisteredClaims
}

// Encoder signs and verifies session tokens with a process-wide HMAC secret.
type Encoder struct {
	secret []byte
	now    func() time.Time
}

func NewEncoder(secret string) *Encoder {
	return &Encoder{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Encode signs {sub, email, access_token, exp}. Tokens are immutable; a
// renewal encodes a new one.
func (e *Encoder) Encode(subject, email, accessToken string, expiresAt time.Time) (string, error) {
	if len(e.secret) == 0 {
		return "", ErrMissingSecret
	}
	if subject == "" {
		return "", ErrMissingSubject
	}

	claims := Claims{
		Email:       email,
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(e.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt.Truncate(time.Second)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of raw.
func (e *Encoder) Decode(raw string) (*Claims, error) {
	if len(e.secret) == 0 {
		return nil, ErrMissingSecret
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return e.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}
