package deriver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dominic-source/kadabite-app/internal/actions"
	"github.com/dominic-source/kadabite-app/internal/auth"
	"github.com/dominic-source/kadabite-app/internal/auth/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEncoder struct{}

func (failingEncoder) Encode(string, string, string, time.Time) (string, error) {
	return "", errors.New("no secret")
}

type fakeGoogle struct {
	result actions.Result
	args   []actions.GoogleAuthArgs
}

func (f *fakeGoogle) GoogleAuth(_ context.Context, args actions.GoogleAuthArgs) actions.Result {
	f.args = append(f.args, args)
	return f.result
}

var expires = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

func TestDerive_EmptyIdentity(t *testing.T) {
	d := New(token.NewEncoder("s3cret"), nil)

	for _, id := range []*auth.Identity{nil, {Email: "a@b.com"}} {
		sess := d.Derive(context.Background(), id, expires)

		assert.True(t, sess.Empty())
		assert.Equal(t, "", sess.User.ID)
		assert.Equal(t, time.Unix(0, 0).Unix(), sess.Expires.Unix())
		assert.Empty(t, sess.JWTToken)
		assert.Empty(t, sess.AccessToken)
	}
}

func TestDerive_Credentials(t *testing.T) {
	enc := token.NewEncoder("s3cret")
	d := New(enc, nil)

	sess := d.Derive(context.Background(), &auth.Identity{
		ID:            "1",
		Email:         "ada@kadabite.com",
		Name:          "Ada Marie Lovelace",
		AvatarURL:     "https://cdn.kadabite.com/ada.png",
		AccessToken:   "backend-token",
		Provider:      auth.ProviderCredentials,
		Organisations: []string{"org-1"},
	}, expires)

	assert.Equal(t, User{
		ID:         "1",
		FirstName:  "Ada",
		MiddleName: "Marie",
		LastName:   "Lovelace",
		Email:      "ada@kadabite.com",
		Image:      "https://cdn.kadabite.com/ada.png",
	}, sess.User)
	assert.Equal(t, "backend-token", sess.AccessToken)
	assert.Equal(t, []string{"org-1"}, sess.UserOrg)
	assert.Equal(t, expires, sess.Expires)

	require.NotEmpty(t, sess.JWTToken)
	claims, err := enc.Decode(sess.JWTToken)
	if err == nil {
		assert.Equal(t, "1", claims.Subject)
	} else {
		// the fixed expiry may already be in the past when this runs
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

func TestDerive_EncodeFailureDegrades(t *testing.T) {
	google := &fakeGoogle{result: actions.Result{Success: true}}
	d := New(failingEncoder{}, map[string]Finalizer{
		auth.ProviderGoogle: MirrorFinalizer{Backend: google},
	})

	sess := d.Derive(context.Background(), &auth.Identity{
		ID:          "1",
		Name:        "Ada Lovelace",
		AccessToken: "tok",
		Provider:    auth.ProviderGoogle,
	}, expires)

	assert.Empty(t, sess.JWTToken)
	assert.Equal(t, "1", sess.User.ID)
	assert.Equal(t, "Ada", sess.User.FirstName)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.Empty(t, google.args, "mirror must not run without a token")
}

func TestDerive_GoogleMirrors(t *testing.T) {
	google := &fakeGoogle{result: actions.Result{Success: true}}
	d := New(token.NewEncoder("s3cret"), map[string]Finalizer{
		auth.ProviderGoogle: MirrorFinalizer{Backend: google},
	})

	sess := d.Derive(context.Background(), &auth.Identity{
		ID:        "g-1",
		Email:     "ada@gmail.com",
		Name:      "Ada Lovelace",
		AvatarURL: "https://lh3.googleusercontent.com/ada",
		Provider:  auth.ProviderGoogle,
	}, expires)

	require.Len(t, google.args, 1)
	args := google.args[0]
	assert.Equal(t, sess.JWTToken, args.JWTToken)
	assert.Equal(t, "ada@gmail.com", args.Email)
	assert.Equal(t, "Ada", args.FirstName)
	assert.Equal(t, "Lovelace", args.LastName)
	assert.Equal(t, "", args.MiddleName)
	assert.Equal(t, "https://lh3.googleusercontent.com/ada", args.AvatarURL)
	assert.NotEmpty(t, sess.JWTToken)
}

func TestDerive_GoogleMirrorFailureDegrades(t *testing.T) {
	google := &fakeGoogle{result: actions.Result{Success: false, Message: "Server error"}}
	d := New(token.NewEncoder("s3cret"), map[string]Finalizer{
		auth.ProviderGoogle: MirrorFinalizer{Backend: google},
	})

	sess := d.Derive(context.Background(), &auth.Identity{
		ID:       "g-1",
		Email:    "ada@gmail.com",
		Name:     "Ada",
		Provider: auth.ProviderGoogle,
	}, expires)

	assert.Len(t, google.args, 1)
	assert.Empty(t, sess.JWTToken)
	assert.Equal(t, "g-1", sess.User.ID)
	assert.Equal(t, "ada@gmail.com", sess.User.Email)
}

func TestDerive_OtherProviderAttaches(t *testing.T) {
	google := &fakeGoogle{}
	d := New(token.NewEncoder("s3cret"), map[string]Finalizer{
		auth.ProviderGoogle: MirrorFinalizer{Backend: google},
	})

	sess := d.Derive(context.Background(), &auth.Identity{ID: "k-1", Provider: "keycloak"}, expires)

	assert.NotEmpty(t, sess.JWTToken)
	assert.Empty(t, google.args)
}
