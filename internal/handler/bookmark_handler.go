package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookmarkRequest is the body of a bookmark create.
type BookmarkRequest struct {
	OpportunityID string `json:"opportunityId" validate:"required,max=36"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// ListBookmarks returns the principal's bookmarks with their opportunities.
func (h *Handler) ListBookmarks(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := h.store.ListBookmarks(c.Request().Context(), p.ID, pg)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// CreateBookmark pins an opportunity. A second pin of the same opportunity
// is a conflict.
func (h *Handler) CreateBookmark(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req BookmarkRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	b := &model.Bookmark{UserID: p.ID, OpportunityID: req.OpportunityID, Notes: req.Notes}
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := store.CreateBookmark(tx, b); err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Bookmarked opportunity", EntityType: "bookmark", EntityID: b.ID, Details: b.OpportunityID}, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			logger.FromEcho(c).Warn("Opportunity already bookmarked", zap.String("opportunity_id", req.OpportunityID))
		}
		return err
	}
	return response.Created(c, b)
}

// DeleteBookmark removes a bookmark.
func (h *Handler) DeleteBookmark(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		b, err := store.DeleteOwned[model.Bookmark](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Removed bookmark", EntityType: "bookmark", EntityID: b.ID, Details: b.OpportunityID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
