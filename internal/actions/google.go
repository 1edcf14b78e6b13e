package actions

import (
	"context"

	"github.com/dominic-source/kadabite-app/internal/backend"
	"github.com/dominic-source/kadabite-app/internal/logger"
)

// GoogleAuthArgs is what the Google sign-in mirrors into the backend.
type GoogleAuthArgs struct {
	JWTToken   string
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	AvatarURL  string
}

// GoogleAuth completes third-party login on the backend, authenticated with
// the freshly encoded session token.
func (a *Actions) GoogleAuth(ctx context.Context, args GoogleAuthArgs) Result {
	base, res, ok := a.baseURL(ctx, "googleAuth")
	if !ok {
		return res
	}

	out, err := a.client.ThirdPartyLogin(ctx, base, args.JWTToken, backend.ThirdPartyLoginInput{
		Email:      args.Email,
		FirstName:  args.FirstName,
		LastName:   args.LastName,
		MiddleName: args.MiddleName,
		ImageURL:   args.AvatarURL,
	})
	if err != nil {
		return failure("googleAuth", err)
	}

	if !out.OK {
		logger.Warn("thirdPartyLogin rejected", map[string]any{
			"status":  out.StatusCode,
			"message": out.Message,
		})
		return Result{Success: false, Message: out.Message, StatusCode: out.StatusCode}
	}

	return Result{Success: true, Message: out.Message, StatusCode: out.StatusCode}
}
