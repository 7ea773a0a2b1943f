package handler

import (
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

// ApplicationRequest is the body of a create or full update.
type ApplicationRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Funder        string   `json:"funder" validate:"max=255"`
	OpportunityID *string  `json:"opportunityId" validate:"omitnil,max=36"`
	Amount        *float64 `json:"amount" validate:"omitnil,gte=0"`
	Status        string   `json:"status" validate:"omitempty,oneof=Draft 'In Progress' Submitted Awarded Rejected"`
	Deadline      *string  `json:"deadline" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Content       string   `json:"content" validate:"max=100000"`
	Notes         string   `json:"notes" validate:"max=5000"`
}

// ApplicationPatch is the body of a partial update.
type ApplicationPatch struct {
	Title         *string  `json:"title" validate:"omitnil,min=1,max=255" patch:"required"`
	Funder        *string  `json:"funder" validate:"omitnil,max=255"`
	OpportunityID *string  `json:"opportunityId" validate:"omitnil,max=36"`
	Amount        *float64 `json:"amount" validate:"omitnil,gte=0"`
	Status        *string  `json:"status" validate:"omitnil,oneof=Draft 'In Progress' Submitted Awarded Rejected" patch:"required"`
	Deadline      *string  `json:"deadline" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Content       *string  `json:"content" validate:"omitnil,max=100000"`
	Notes         *string  `json:"notes" validate:"omitnil,max=5000"`
}

func (r *ApplicationRequest) columns() map[string]interface{} {
	return map[string]interface{}{
		"Title":         r.Title,
		"Funder":        r.Funder,
		"OpportunityID": r.OpportunityID,
		"Amount":        r.Amount,
		"Status":        orDefault(r.Status, model.Defaults.ApplicationStatus),
		"Deadline":      parseTimePtr(r.Deadline),
		"Content":       r.Content,
		"Notes":         r.Notes,
	}
}

// ListApplications returns the principal's applications, filtered by status
// and a title/funder search.
func (h *Handler) ListApplications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.GrantApplication](c.Request().Context(), h.store, p.ID, pg, "",
		store.Equal("status", c.QueryParam("status")),
		store.Search(c.QueryParam("search"), "title", "funder"),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetApplication returns one application.
func (h *Handler) GetApplication(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	app, err := store.Get[model.GrantApplication](c.Request().Context(), h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, app)
}

// CreateApplication stores a new application; status defaults to Draft.
func (h *Handler) CreateApplication(c echo.Context) error {
	log := logger.FromEcho(c)
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req ApplicationRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	app := &model.GrantApplication{
		Title:         req.Title,
		Funder:        req.Funder,
		OpportunityID: req.OpportunityID,
		Amount:        req.Amount,
		Status:        orDefault(req.Status, model.Defaults.ApplicationStatus),
		Deadline:      parseTimePtr(req.Deadline),
		Content:       req.Content,
		Notes:         req.Notes,
	}
	app.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := tx.Create(app).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Created application: " + app.Title, EntityType: "application", EntityID: app.ID}, nil
	})
	if err != nil {
		return err
	}

	log.Info("Application created", zap.String("application_id", app.ID))
	return response.Created(c, app)
}

// ReplaceApplication overwrites every field of an application.
func (h *Handler) ReplaceApplication(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req ApplicationRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	return h.updateApplication(c, p.ID, req.columns())
}

// UpdateApplication applies a partial update.
func (h *Handler) UpdateApplication(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch ApplicationPatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}
	parseTimes(updates, "Deadline")
	return h.updateApplication(c, p.ID, updates)
}

func (h *Handler) updateApplication(c echo.Context, userID string, updates map[string]interface{}) error {
	id := c.Param("id")

	var app *model.GrantApplication
	err := h.store.Mutate(c.Request().Context(), userID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		app, err = store.UpdateOwned[model.GrantApplication](tx, id, userID, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated application: " + app.Title, EntityType: "application", EntityID: app.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, app)
}

// DeleteApplication removes an application.
func (h *Handler) DeleteApplication(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		app, err := store.DeleteOwned[model.GrantApplication](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Deleted application: " + app.Title, EntityType: "application", EntityID: app.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
