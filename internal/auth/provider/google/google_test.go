package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testProvider(tokenURL string) *Provider {
	return newProvider(nil, &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/oauth/callback/google",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"openid", "profile", "email"},
	})
}

func TestAuthCodeURL(t *testing.T) {
	raw := testProvider("https://oauth2.googleapis.com/token").AuthCodeURL("st", "challenge")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "challenge", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestIdentityFrom(t *testing.T) {
	expiry := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	id, err := identityFrom(claims{
		Subject: "1234",
		Email:   "ada@gmail.com",
		Name:    "Ada Lovelace",
		Picture: "https://lh3.googleusercontent.com/ada",
	}, &oauth2.Token{AccessToken: "ya29", RefreshToken: "1//r", Expiry: expiry})
	require.NoError(t, err)

	assert.Equal(t, "1234", id.ID)
	assert.Equal(t, "google", id.Provider)
	assert.Equal(t, "Ada Lovelace", id.Name)
	assert.Equal(t, "ya29", id.ProviderAccessToken)
	assert.Equal(t, "1//r", id.ProviderRefreshToken)
	assert.Equal(t, expiry.Unix(), id.ProviderTokenExpiry)
	assert.Empty(t, id.AccessToken)
}

func TestIdentityFrom_RequiresEmail(t *testing.T) {
	_, err := identityFrom(claims{Subject: "1234"}, &oauth2.Token{})
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "1//r", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.new","token_type":"Bearer","expires_in":3599}`))
	}))
	defer srv.Close()

	tok, err := testProvider(srv.URL).Refresh(context.Background(), "1//r")
	require.NoError(t, err)
	assert.Equal(t, "ya29.new", tok.AccessToken)
	assert.True(t, tok.Expiry.After(time.Now()))
}

func TestRefresh_Empty(t *testing.T) {
	_, err := testProvider("http://unused").Refresh(context.Background(), "")
	assert.Error(t, err)
}
