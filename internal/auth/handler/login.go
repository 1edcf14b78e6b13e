package handler

import (
	"errors"
	"net/http"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/audit"
	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/auth/deriver"
	"github.com/dominic-source/kadabite-app/internal/auth/provider/credentials"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/metrics"
	"github.com/dominic-source/kadabite-app/internal/session"

	"github.com/gin-gonic/gin"
)

type loginResponse struct {
	Success     bool            `json:"success"`
	AccessToken string          `json:"access_token"`
	Session     deriver.Session `json:"session"`
}

// Login signs in with email and password against the request's backend.
// Every failure is answered with an action result the page shows as a toast.
func (h *Handler) Login(c *gin.Context) {
	var form actions.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, actions.Result{
			Success:    false,
			Message:    "Invalid form data",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	ctx := c.Request.Context()

	if res := h.checker.CredentialsAuth(ctx, form); !res.Success {
		h.loginFailed(c, form.Email, res)
		return
	}

	identity, err := h.credentials.Authorize(ctx, form)
	if err != nil {
		var rejected *credentials.RejectedError
		if errors.As(err, &rejected) {
			h.loginFailed(c, form.Email, rejected.Result)
			return
		}
		h.loginFailed(c, form.Email, actions.Result{Message: err.Error()})
		return
	}

	view, err := h.signIn(c, identity)
	if err != nil {
		logger.Error("failed to persist session", map[string]any{
			"provider": auth.ProviderCredentials,
			"error":    err.Error(),
		})
		h.loginFailed(c, form.Email, actions.Result{
			Message:    "An unexpected error occurred",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}

	session.SetNamedCookie(c.Writer, session.AuthTokenCookie, identity.AccessToken, view.Expires, h.cookieOptions())

	metrics.RecordSignIn(auth.ProviderCredentials, true)
	h.record(c, audit.Entry{
		Provider: auth.ProviderCredentials,
		Email:    form.Email,
		Success:  true,
	})

	c.JSON(http.StatusOK, loginResponse{
		Success:     true,
		AccessToken: identity.AccessToken,
		Session:     view,
	})
}

func (h *Handler) loginFailed(c *gin.Context, email string, res actions.Result) {
	res.Success = false
	status := res.StatusCode
	if status < http.StatusBadRequest {
		status = http.StatusUnauthorized
	}

	metrics.RecordSignIn(auth.ProviderCredentials, false)
	h.record(c, audit.Entry{
		Provider: auth.ProviderCredentials,
		Email:    email,
		Success:  false,
		Message:  res.Message,
	})

	c.JSON(status, res)
}
