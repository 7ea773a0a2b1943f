package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/testutil"
	"go.uber.org/zap"
)

func requestWithBearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/donors", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req, "gd_session"))

	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", TokenFromRequest(req, "gd_session"))

	req.AddCookie(&http.Cookie{Name: "gd_session", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "gd_session"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(req, ""))
}

func TestSessionProvider(t *testing.T) {
	p := NewSessionProvider(testutil.JWT(), "gd_session")

	t.Run("valid token", func(t *testing.T) {
		principal, err := p.Resolve(context.Background(), requestWithBearer(testutil.Token(t, "user-1")))
		require.NoError(t, err)
		assert.Equal(t, "user-1", principal.ID)
		assert.Equal(t, "user-1@example.org", principal.Email)
	})

	t.Run("no token", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), requestWithBearer(""))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), requestWithBearer("not-a-jwt"))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("subject as wide as the owner column", func(t *testing.T) {
		id := strings.Repeat("a", model.MaxPrincipalIDLen)
		principal, err := p.Resolve(context.Background(), requestWithBearer(testutil.Token(t, id)))
		require.NoError(t, err)
		assert.Equal(t, id, principal.ID)
	})

	t.Run("subject wider than the owner column", func(t *testing.T) {
		id := strings.Repeat("a", model.MaxPrincipalIDLen+1)
		_, err := p.Resolve(context.Background(), requestWithBearer(testutil.Token(t, id)))
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestRemoteProvider(t *testing.T) {
	rec := testutil.NewVCRRecorder(t, "remote_user")

	p := NewRemoteProvider("https://idp.example.org/auth/v1/", "gd_session", 0, zap.NewNop())
	p.HTTPClient = testutil.VCRHTTPClient(rec)

	t.Run("known session", func(t *testing.T) {
		principal, err := p.Resolve(context.Background(), requestWithBearer("valid-session"))
		require.NoError(t, err)
		assert.Equal(t, "7d1c3c52-5b7e-4d8e-9a57-2f0f3f4b1a10", principal.ID)
		assert.Equal(t, "dana@example.org", principal.Email)
	})

	t.Run("revoked session", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), requestWithBearer("revoked-session"))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("provider failure", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), requestWithBearer("flaky-session"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoSession)
	})

	t.Run("no token never calls out", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), requestWithBearer(""))
		assert.ErrorIs(t, err, ErrNoSession)
	})
}
