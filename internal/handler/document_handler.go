package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"gorm.io/gorm"
)

// DocumentRequest is the body of a document create.
type DocumentRequest struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Kind          string  `json:"kind" validate:"omitempty,oneof=proposal budget report letter other"`
	Content       string  `json:"content" validate:"max=200000"`
	ApplicationID *string `json:"applicationId" validate:"omitnil,max=36"`
}

// DocumentPatch is the body of a partial update.
type DocumentPatch struct {
	Title         *string `json:"title" validate:"omitnil,min=1,max=255" patch:"required"`
	Kind          *string `json:"kind" validate:"omitnil,oneof=proposal budget report letter other" patch:"required"`
	Content       *string `json:"content" validate:"omitnil,max=200000"`
	ApplicationID *string `json:"applicationId" validate:"omitnil,max=36"`
}

// ListDocuments returns the principal's documents, filtered by kind and
// application.
func (h *Handler) ListDocuments(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.Document](c.Request().Context(), h.store, p.ID, pg, "updated_at DESC",
		store.Equal("kind", c.QueryParam("kind")),
		store.Equal("application_id", c.QueryParam("applicationId")),
		store.Search(c.QueryParam("search"), "title"),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetDocument returns one document.
func (h *Handler) GetDocument(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	doc, err := store.Get[model.Document](c.Request().Context(), h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, doc)
}

// CreateDocument stores a document; kind defaults to other.
func (h *Handler) CreateDocument(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req DocumentRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	doc := &model.Document{
		Title:         req.Title,
		Kind:          orDefault(req.Kind, model.Defaults.DocumentKind),
		Content:       req.Content,
		ApplicationID: req.ApplicationID,
	}
	doc.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if doc.ApplicationID != nil {
			if _, err := store.FindOwned[model.GrantApplication](tx, *doc.ApplicationID, p.ID); err != nil {
				return nil, err
			}
		}
		if err := tx.Create(doc).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Created document: " + doc.Title, EntityType: "document", EntityID: doc.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Created(c, doc)
}

// UpdateDocument applies a partial update.
func (h *Handler) UpdateDocument(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch DocumentPatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}

	var doc *model.Document
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if appID, ok := updates["ApplicationID"].(string); ok {
			if _, err := store.FindOwned[model.GrantApplication](tx, appID, p.ID); err != nil {
				return nil, err
			}
		}
		var err error
		doc, err = store.UpdateOwned[model.Document](tx, c.Param("id"), p.ID, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated document: " + doc.Title, EntityType: "document", EntityID: doc.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, doc)
}

// DeleteDocument removes a document.
func (h *Handler) DeleteDocument(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		doc, err := store.DeleteOwned[model.Document](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Deleted document: " + doc.Title, EntityType: "document", EntityID: doc.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
