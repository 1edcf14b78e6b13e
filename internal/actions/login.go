package actions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dominic-source/kadabite-app/internal/backend"

	"github.com/go-playground/validator/v10"
)

// LoginForm is the credentials form posted by the login page.
type LoginForm struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// Validate returns field-level messages keyed by the JSON field name, or
// nil when the form is valid.
func (a *Actions) Validate(form LoginForm) map[string]string {
	err := a.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = fe.Field() + " is required"
		case "email":
			out[field] = "Invalid email address"
		default:
			out[field] = "Invalid " + field
		}
	}
	return out
}

// NextLogin exchanges credentials at POST /auth/login for the backend user
// and its access token.
func (a *Actions) NextLogin(ctx context.Context, form LoginForm) Result {
	if errs := a.Validate(form); errs != nil {
		return Result{Success: false, Message: msgInvalidForm, StatusCode: http.StatusBadRequest, Errors: errs}
	}

	base, res, ok := a.baseURL(ctx, "nextLogin")
	if !ok {
		return res
	}

	resp, err := a.client.Login(ctx, base, backend.LoginRequest{
		Email:      form.Email,
		Password:   form.Password,
		RememberMe: form.RememberMe,
	})
	if err != nil {
		return failure("nextLogin", err)
	}

	user := resp.Data.User
	return Result{
		Success:     true,
		User:        &user,
		AccessToken: resp.AccessToken,
	}
}

// CredentialsAuth runs the GraphQL login mutation. A response with ok=false
// is a login failure carrying the backend's message.
func (a *Actions) CredentialsAuth(ctx context.Context, form LoginForm) Result {
	if errs := a.Validate(form); errs != nil {
		return Result{Success: false, Message: msgInvalidForm, StatusCode: http.StatusBadRequest, Errors: errs}
	}

	base, res, ok := a.baseURL(ctx, "credentialsAuth")
	if !ok {
		return res
	}

	out, err := a.client.GraphQLLogin(ctx, base, form.Email, form.Password)
	if err != nil {
		return failure("credentialsAuth", err)
	}

	if !out.OK {
		msg := out.Message
		if msg == "" {
			msg = "Invalid credentials"
		}
		status := out.StatusCode
		if status == 0 {
			status = http.StatusUnauthorized
		}
		return Result{Success: false, Message: msg, StatusCode: status}
	}

	return Result{
		Success:      true,
		Message:      out.Message,
		StatusCode:   out.StatusCode,
		Token:        out.Token,
		RefreshToken: out.RefreshToken,
	}
}
