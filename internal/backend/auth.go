package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// User is the backend's view of a signed-in user.
type User struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Name          string   `json:"name"`
	AvatarURL     string   `json:"avatar_url"`
	Organisations []string `json:"organisations"`
}

// DisplayName prefers the backend's name and falls back to first/last.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type LoginResponse struct {
	Data struct {
		User User `json:"user"`
	} `json:"data"`
	AccessToken string `json:"access_token"`
}

// Login calls POST {base}/auth/login.
func (c *Client) Login(ctx context.Context, baseURL string, in LoginRequest) (*LoginResponse, error) {
	raw, err := c.post(ctx, request{
		operation: "login",
		baseURL:   baseURL,
		path:      "/auth/login",
		body:      in,
	})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}
	return &out, nil
}

const loginMutation = `
mutation login($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    ok
    message
    statusCode
    token
    refreshToken
  }
}`

const thirdPartyLoginMutation = `
mutation thirdPartyLogin($email: String!, $firstName: String!, $lastName: String!, $middleName: String, $imageUrl: String) {
  thirdPartyLogin(email: $email, firstName: $firstName, lastName: $lastName, middleName: $middleName, imageUrl: $imageUrl) {
    ok
    message
    statusCode
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// MutationResult is the common payload of the auth mutations.
type MutationResult struct {
	OK           bool   `json:"ok"`
	Message      string `json:"message"`
	StatusCode   int    `json:"statusCode"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// GraphQLLogin runs the login mutation. A response with ok=false is not
// an error here; callers decide how to surface it.
func (c *Client) GraphQLLogin(ctx context.Context, baseURL, email, password string) (*MutationResult, error) {
	raw, err := c.post(ctx, request{
		operation: "graphql_login",
		baseURL:   baseURL,
		path:      "/graphql",
		body: graphQLRequest{
			Query: loginMutation,
			Variables: map[string]any{
				"email":    email,
				"password": password,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeMutation(raw, "login")
}

type ThirdPartyLoginInput struct {
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	ImageURL   string
}

// ThirdPartyLogin mirrors an OAuth identity into the backend. The backend
// creates the user or returns the existing one, so the call is retried.
func (c *Client) ThirdPartyLogin(ctx context.Context, baseURL, bearer string, in ThirdPartyLoginInput) (*MutationResult, error) {
	raw, err := c.post(ctx, request{
		operation: "third_party_login",
		baseURL:   baseURL,
		path:      "/graphql",
		bearer:    bearer,
		body: graphQLRequest{
			Query: thirdPartyLoginMutation,
			Variables: map[string]any{
				"email":      in.Email,
				"firstName":  in.FirstName,
				"lastName":   in.LastName,
				"middleName": in.MiddleName,
				"imageUrl":   in.ImageURL,
			},
		},
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeMutation(raw, "thirdPartyLogin")
}

// decodeMutation reads data.<field>, falling back to data itself for
// backends that return the payload unwrapped.
func decodeMutation(raw []byte, field string) (*MutationResult, error) {
	if msg := gjson.GetBytes(raw, "errors.0.message"); msg.Exists() {
		return nil, fmt.Errorf("graphql %s: %s", field, msg.String())
	}

	payload := gjson.GetBytes(raw, "data."+field)
	if !payload.IsObject() {
		payload = gjson.GetBytes(raw, "data")
	}
	if !payload.IsObject() {
		return nil, fmt.Errorf("graphql %s: missing data", field)
	}

	var out MutationResult
	if err := json.Unmarshal([]byte(payload.Raw), &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", field)
	}
	return &out, nil
}
