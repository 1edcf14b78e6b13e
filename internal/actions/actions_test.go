package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dominic-source/kadabite-app/internal/backend"
	"github.com/dominic-source/kadabite-app/internal/environment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActions(defaultURL string) *Actions {
	client := backend.NewClient(backend.Options{
		Timeout:    2 * time.Second,
		Retries:    2,
		RetryDelay: time.Millisecond,
	})
	return New(client, environment.BaseURLs{Default: defaultURL})
}

func TestNextLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"1"}},"access_token":"tok"}`))
	}))
	defer srv.Close()

	res := newActions(srv.URL).NextLogin(context.Background(), LoginForm{Email: "a@b.com", Password: "x"})

	assert.True(t, res.Success)
	assert.Equal(t, "tok", res.AccessToken)
	require.NotNil(t, res.User)
	assert.Equal(t, "1", res.User.ID)
}

func TestNextLogin_UsesTargetURL(t *testing.T) {
	var hits int32
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"7"}},"access_token":"node-tok"}`))
	}))
	defer node.Close()

	a := newActions("http://127.0.0.1:1")
	a.urls.Node = node.URL

	ctx := environment.WithTarget(context.Background(), environment.Node)
	res := a.NextLogin(ctx, LoginForm{Email: "a@b.com", Password: "x"})

	assert.True(t, res.Success)
	assert.Equal(t, "node-tok", res.AccessToken)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestNextLogin_ValidationErrors(t *testing.T) {
	res := newActions("http://unused").NextLogin(context.Background(), LoginForm{Email: "not-an-email"})

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid email address", res.Errors["email"])
	assert.Equal(t, "Password is required", res.Errors["password"])
}

func TestNextLogin_MissingBaseURL(t *testing.T) {
	res := newActions("").NextLogin(context.Background(), LoginForm{Email: "a@b.com", Password: "x"})

	assert.False(t, res.Success)
	assert.Equal(t, "Base URL not defined", res.Message)
	assert.Equal(t, 500, res.StatusCode)
}

func TestNextLogin_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	}))
	defer srv.Close()

	res := newActions(srv.URL).NextLogin(context.Background(), LoginForm{Email: "a@b.com", Password: "x"})

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Invalid email or password", res.Message)
}

func TestNextLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newActions(url).NextLogin(context.Background(), LoginForm{Email: "a@b.com", Password: "x"})

	assert.False(t, res.Success)
	assert.Equal(t, "An unexpected error occurred", res.Message)
}

func TestCredentialsAuth(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
		wantStatus  int
	}{
		{
			name:        "ok",
			body:        `{"data":{"login":{"ok":true,"message":"Login successful","statusCode":200,"token":"t","refreshToken":"r"}}}`,
			wantSuccess: true,
			wantMessage: "Login successful",
			wantStatus:  200,
		},
		{
			name:        "rejected",
			body:        `{"data":{"login":{"ok":false,"message":"Invalid credentials","statusCode":401}}}`,
			wantMessage: "Invalid credentials",
			wantStatus:  401,
		},
		{
			name:        "rejected without details",
			body:        `{"data":{"login":{"ok":false}}}`,
			wantMessage: "Invalid credentials",
			wantStatus:  401,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := newActions(srv.URL).CredentialsAuth(context.Background(), LoginForm{Email: "a@b.com", Password: "x"})

			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantSuccess {
				assert.Equal(t, "t", res.Token)
				assert.Equal(t, "r", res.RefreshToken)
			}
		})
	}
}

func TestGoogleAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"thirdPartyLogin":{"ok":true,"message":"welcome","statusCode":200}}}`))
	}))
	defer srv.Close()

	res := newActions(srv.URL).GoogleAuth(context.Background(), GoogleAuthArgs{
		JWTToken:  "jwt",
		Email:     "ada@kadabite.com",
		FirstName: "Ada",
	})

	assert.True(t, res.Success)
	assert.Equal(t, "welcome", res.Message)
}

func TestGoogleAuth_MissingBaseURL(t *testing.T) {
	res := newActions("").GoogleAuth(context.Background(), GoogleAuthArgs{JWTToken: "jwt"})

	assert.False(t, res.Success)
	assert.Equal(t, "Base URL not defined", res.Message)
}
