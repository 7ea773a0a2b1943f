package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/suteetoe/grantdesk/internal/identity"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid json", validate.ErrInvalidJSON, http.StatusBadRequest,
			`{"success":false,"error":"Invalid JSON in request body"}`},
		{"validation", validate.Errors{{Path: "title", Message: "title is a required field"}}, http.StatusBadRequest,
			`{"success":false,"error":"Validation failed","details":[{"path":"title","message":"title is a required field"}]}`},
		{"no session", fmt.Errorf("%w: token expired", identity.ErrNoSession), http.StatusUnauthorized,
			`{"success":false,"error":"Unauthorized"}`},
		{"forbidden", store.ErrForbidden, http.StatusForbidden,
			`{"success":false,"error":"Forbidden"}`},
		{"not found", fmt.Errorf("load donor: %w", store.ErrNotFound), http.StatusNotFound,
			`{"success":false,"error":"Resource not found"}`},
		{"conflict", store.ErrConflict, http.StatusConflict,
			`{"success":false,"error":"Resource already exists"}`},
		{"rate limited", echo.NewHTTPError(http.StatusTooManyRequests), http.StatusTooManyRequests,
			`{"success":false,"error":"Too many requests, please try again later."}`},
		{"http error keeps message", echo.NewHTTPError(http.StatusBadRequest, "Session is not active"), http.StatusBadRequest,
			`{"success":false,"error":"Session is not active"}`},
		{"route not found", echo.ErrNotFound, http.StatusNotFound,
			`{"success":false,"error":"Not Found"}`},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError,
			`{"success":false,"error":"Internal server error"}`},
	}

	e := echo.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/x", nil), rec)

			ErrorHandler(tc.err, c)

			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestErrorHandlerHeadHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodHead, "/api/x", nil), rec)

	ErrorHandler(store.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandlerSkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/x", nil), rec)
	_ = c.String(http.StatusOK, "partial")

	ErrorHandler(errors.New("stream broke"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
	}
	for _, tc := range tests {
		m := NewMeta(validate.Page{Page: 1, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.pages, m.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}
