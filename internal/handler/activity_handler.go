package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
)

// ListActivity returns the principal's audit trail, newest first,
// optionally narrowed to one entity type or entity.
func (h *Handler) ListActivity(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.Activity](c.Request().Context(), h.store, p.ID, pg, "created_at DESC",
		store.Equal("entity_type", c.QueryParam("entityType")),
		store.Equal("entity_id", c.QueryParam("entityId")),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// DashboardStats summarizes the principal's workspace. Any userId query
// parameter is ignored.
func (h *Handler) DashboardStats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	stats, err := h.store.Stats(c.Request().Context(), p.ID, h.now().UTC())
	if err != nil {
		return err
	}
	return response.OK(c, stats)
}
