package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/genie"
	"github.com/suteetoe/grantdesk/internal/middleware"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"gorm.io/datatypes"
)

// Handler serves the /api resources.
type Handler struct {
	store *store.Store
	genie genie.Genie
	now   func() time.Time
}

// New creates a Handler.
func New(s *store.Store, g genie.Genie) *Handler {
	return &Handler{store: s, genie: g, now: time.Now}
}

func principal(c echo.Context) (*model.Principal, error) {
	return middleware.RequirePrincipal(c)
}

func page(c echo.Context) (validate.Page, error) {
	return validate.ParsePage(c.QueryParams())
}

// parseTimes replaces the RFC 3339 strings under keys with times.
func parseTimes(updates map[string]interface{}, keys ...string) {
	for _, key := range keys {
		if s, ok := updates[key].(string); ok {
			updates[key] = validate.ParseTime(s)
		}
	}
}

func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := validate.ParseTime(*s)
	return &t
}

func stringsJSON(v []string) datatypes.JSONSlice[string] {
	if v == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](v)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
