package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/middleware"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
)

// ListOpportunities returns the public grant catalog. Signed-in callers
// also see which entries they bookmarked.
func (h *Handler) ListOpportunities(c echo.Context) error {
	pg, err := page(c)
	if err != nil {
		return err
	}

	filter := store.OpportunityFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
	}
	rows, total, err := h.store.ListOpportunities(c.Request().Context(), filter, pg, middleware.PrincipalID(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetOpportunity returns one catalog entry.
func (h *Handler) GetOpportunity(c echo.Context) error {
	opp, err := h.store.Opportunity(c.Request().Context(), c.Param("id"), middleware.PrincipalID(c))
	if err != nil {
		return err
	}
	return response.OK(c, opp)
}
