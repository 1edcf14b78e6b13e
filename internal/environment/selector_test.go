package environment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	deleted []string
	err     error
}

func (r *recordingInvalidator) Delete(_ context.Context, sessionID string) error {
	r.deleted = append(r.deleted, sessionID)
	return r.err
}

func TestParseTarget(t *testing.T) {
	for _, s := range []string{"", "python", "node"} {
		got, err := ParseTarget(s)
		require.NoError(t, err)
		assert.Equal(t, Target(s), got)
	}

	_, err := ParseTarget("ruby")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestBaseURLs_Resolve(t *testing.T) {
	urls := BaseURLs{
		Default: "https://api.kadabite.com",
		Python:  "https://py.kadabite.com",
	}

	got, err := urls.Resolve(Unset)
	require.NoError(t, err)
	assert.Equal(t, "https://api.kadabite.com", got)

	got, err = urls.Resolve(Python)
	require.NoError(t, err)
	assert.Equal(t, "https://py.kadabite.com", got)

	// node has no URL of its own
	got, err = urls.Resolve(Node)
	require.NoError(t, err)
	assert.Equal(t, "https://api.kadabite.com", got)

	_, err = BaseURLs{}.Resolve(Unset)
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestTargetContext(t *testing.T) {
	assert.Equal(t, Unset, TargetFromContext(context.Background()))

	ctx := WithTarget(context.Background(), Node)
	assert.Equal(t, Node, TargetFromContext(ctx))
}

func TestSelector_SetInvalidatesSession(t *testing.T) {
	store := NewMemoryStore()
	inv := &recordingInvalidator{}
	s := NewSelector(store, inv)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "client-1", "sid-1", Python))
	require.NoError(t, s.Set(ctx, "client-1", "sid-2", Node))

	got, err := s.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, Node, got)
	assert.Equal(t, []string{"sid-1", "sid-2"}, inv.deleted)
}

func TestSelector_SetWithoutSession(t *testing.T) {
	inv := &recordingInvalidator{}
	s := NewSelector(NewMemoryStore(), inv)

	require.NoError(t, s.Set(context.Background(), "client-1", "", Python))
	assert.Empty(t, inv.deleted)
}

func TestSelector_SetRejectsUnknown(t *testing.T) {
	inv := &recordingInvalidator{}
	s := NewSelector(NewMemoryStore(), inv)

	err := s.Set(context.Background(), "client-1", "sid", Target("go"))
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.Empty(t, inv.deleted)
}

func TestSelector_SetReportsInvalidationFailure(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	s := NewSelector(NewMemoryStore(), inv)

	err := s.Set(context.Background(), "client-1", "sid", Node)
	assert.Error(t, err)
}

func TestSelector_Toggle(t *testing.T) {
	s := NewSelector(NewMemoryStore(), &recordingInvalidator{})
	ctx := context.Background()

	next, err := s.Toggle(ctx, "c", "", Unset)
	require.NoError(t, err)
	assert.Equal(t, Python, next)

	next, err = s.Toggle(ctx, "c", "", next)
	require.NoError(t, err)
	assert.Equal(t, Node, next)

	next, err = s.Toggle(ctx, "c", "", next)
	require.NoError(t, err)
	assert.Equal(t, Python, next)

	stored, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, Python, stored)
}

func TestMiddleware_ResolvesTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	s := NewSelector(store, &recordingInvalidator{})

	var seen Target
	router := gin.New()
	router.Use(Middleware(s, false))
	router.GET("/", func(c *gin.Context) {
		seen = TargetFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	// cookie wins
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: BackendCookie, Value: "node"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, Node, seen)

	// persisted preference is used when the cookie is missing
	clientID := "3f1d5c1e-8b8a-4f0e-9c55-3c1f3f1f3f1f"
	require.NoError(t, store.Save(context.Background(), clientID, Python))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: clientID})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, Python, seen)
	assert.Contains(t, rec.Header().Values("Set-Cookie"), "backend=python; Path=/; HttpOnly; SameSite=Lax")
}
