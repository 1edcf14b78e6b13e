// Package actions holds the server-side auth actions the pages call. Every
// action returns a Result; failures never cross the action boundary as
// errors.
package actions

import (
	"context"
	"errors"

	"github.com/dominic-source/kadabite-app/internal/backend"
	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"

	"github.com/go-playground/validator/v10"
)

const (
	msgNoBaseURL   = "Base URL not defined"
	msgInvalidForm = "Invalid form data"
	msgUnexpected  = "An unexpected error occurred"
)

// Result is the uniform action outcome.
type Result struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message,omitempty"`
	StatusCode   int               `json:"statusCode,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	User         *backend.User     `json:"data,omitempty"`
	AccessToken  string            `json:"access_token,omitempty"`
	Token        string            `json:"token,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
}

// Actions binds the backend client to the base URLs of each target.
type Actions struct {
	client   *backend.Client
	urls     environment.BaseURLs
	validate *validator.Validate
}

func New(client *backend.Client, urls environment.BaseURLs) *Actions {
	return &Actions{
		client:   client,
		urls:     urls,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// baseURL resolves the target carried by ctx. The zero Result is returned
// alongside a usable URL.
func (a *Actions) baseURL(ctx context.Context, action string) (string, Result, bool) {
	url, err := a.urls.ResolveContext(ctx)
	if err != nil {
		logger.Error("backend base URL not configured", map[string]any{
			"action":  action,
			"backend": string(environment.TargetFromContext(ctx)),
		})
		return "", Result{Success: false, Message: msgNoBaseURL, StatusCode: 500}, false
	}
	return url, Result{}, true
}

// failure converts an upstream or unexpected error into a Result.
func failure(action string, err error) Result {
	var httpErr *backend.HTTPError
	if errors.As(err, &httpErr) {
		logger.Error("backend http error", map[string]any{
			"action": action,
			"status": httpErr.StatusCode,
			"error":  httpErr.Message,
		})
		return Result{
			Success:    false,
			Message:    httpErr.Message,
			StatusCode: httpErr.StatusCode,
		}
	}

	logger.Error("backend call failed", map[string]any{
		"action": action,
		"error":  err.Error(),
	})
	return Result{Success: false, Message: msgUnexpected}
}
