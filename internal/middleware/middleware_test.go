package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/grantdesk/internal/identity"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/ratelimit"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// headerProvider treats the X-User header as the session.
type headerProvider struct {
	err error
}

func (p headerProvider) Resolve(_ context.Context, r *http.Request) (*model.Principal, error) {
	if p.err != nil {
		return nil, p.err
	}
	id := r.Header.Get("X-User")
	if id == "" {
		return nil, identity.ErrNoSession
	}
	return &model.Principal{ID: id}, nil
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	prev := logger.GetLogger()
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return logs
}

func serve(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	err := RequestIDMiddleware(mw(h))(c)
	return rec, err
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, PrincipalID(c))
}

func TestRequestIDMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec, err := serve(t, func(next echo.HandlerFunc) echo.HandlerFunc { return next }, func(c echo.Context) error {
		assert.Equal(t, "abc-123", c.Get("request_id"))
		return c.NoContent(http.StatusOK)
	}, req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
	rec, err = serve(t, func(next echo.HandlerFunc) echo.HandlerFunc { return next }, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, req)
	require.NoError(t, err)
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestProtectRejectsAnonymous(t *testing.T) {
	logs := observeLogs(t)
	p := NewPipeline(headerProvider{}, ratelimit.NewLimiter(ratelimit.NewMemoryStore(), zap.NewNop()))
	rule := ratelimit.Rule{Name: "moderate", Limit: 10, Window: 10 * time.Second}

	rec, err := serve(t, p.Protect(rule), ok, httptest.NewRequest(http.MethodGet, "/api/donors", nil))
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
	assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 1, logs.FilterMessage("Unauthorized request").Len())

	req := httptest.NewRequest(http.MethodGet, "/api/donors", nil)
	req.Header.Set("X-User", "alice")
	rec, err = serve(t, p.Protect(rule), ok, req)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestPublicPassesAnonymousAndSignedIn(t *testing.T) {
	p := NewPipeline(headerProvider{}, ratelimit.NewLimiter(ratelimit.NewMemoryStore(), zap.NewNop()))
	rule := ratelimit.Rule{Name: "public", Limit: 10, Window: time.Minute}

	rec, err := serve(t, p.Public(rule), ok, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.Header.Set("X-User", "bob")
	rec, err = serve(t, p.Public(rule), ok, req)
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.Body.String())
}

func TestProviderFailureIsAnonymous(t *testing.T) {
	logs := observeLogs(t)
	p := NewPipeline(headerProvider{err: errors.New("idp unreachable")}, ratelimit.NewLimiter(ratelimit.NewMemoryStore(), zap.NewNop()))
	rule := ratelimit.Rule{Name: "moderate", Limit: 10, Window: 10 * time.Second}

	req := httptest.NewRequest(http.MethodGet, "/api/donors", nil)
	req.Header.Set("X-User", "alice")
	_, err := serve(t, p.Protect(rule), ok, req)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	entries := logs.FilterMessage("Unauthorized request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "provider_error", entries[0].ContextMap()["reason"])
	assert.Equal(t, 1, logs.FilterMessage("Identity provider failed").Len())
}

func TestRateLimitKeyedByPrincipalThenIP(t *testing.T) {
	p := NewPipeline(headerProvider{}, ratelimit.NewLimiter(ratelimit.NewMemoryStore(), zap.NewNop()))
	rule := ratelimit.Rule{Name: "strict", Limit: 1, Window: time.Minute}

	request := func(user, ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/genie/proposal", nil)
		req.RemoteAddr = ip + ":4000"
		if user != "" {
			req.Header.Set("X-User", user)
		}
		return req
	}

	_, err := serve(t, p.Protect(rule), ok, request("alice", "10.0.0.1"))
	require.NoError(t, err)

	// Same principal from another address shares the counter.
	rec, err := serve(t, p.Protect(rule), ok, request("alice", "10.0.0.2"))
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different principal on the first address does not.
	_, err = serve(t, p.Protect(rule), ok, request("bob", "10.0.0.1"))
	require.NoError(t, err)

	// Anonymous callers are counted per address.
	_, err = serve(t, p.Public(rule), ok, request("", "10.0.0.1"))
	require.NoError(t, err)
	_, err = serve(t, p.Public(rule), ok, request("", "10.0.0.1"))
	require.ErrorAs(t, err, &he)
	_, err = serve(t, p.Public(rule), ok, request("", "10.0.0.3"))
	require.NoError(t, err)
}

func TestRequirePrincipal(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := RequirePrincipal(c)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	SetPrincipal(c, &model.Principal{ID: "alice"})
	got, err := RequirePrincipal(c)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.ID)
}
