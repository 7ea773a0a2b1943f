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

// ComplianceRequest is the body of a compliance item create.
type ComplianceRequest struct {
	GrantName   string `json:"grantName" validate:"required,max=255"`
	Requirement string `json:"requirement" validate:"required,max=5000"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Priority    string `json:"priority" validate:"required,oneof=High Medium Low"`
	Status      string `json:"status" validate:"omitempty,oneof=Upcoming 'In Progress' Completed Overdue"`
	Notes       string `json:"notes" validate:"max=5000"`
}

// CompliancePatch is the body of a partial update.
type CompliancePatch struct {
	GrantName   *string `json:"grantName" validate:"omitnil,min=1,max=255" patch:"required"`
	Requirement *string `json:"requirement" validate:"omitnil,min=1,max=5000" patch:"required"`
	DueDate     *string `json:"dueDate" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00" patch:"required"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=High Medium Low" patch:"required"`
	Status      *string `json:"status" validate:"omitnil,oneof=Upcoming 'In Progress' Completed Overdue" patch:"required"`
	Notes       *string `json:"notes" validate:"omitnil,max=5000"`
}

// ListCompliance returns the principal's compliance items, earliest due
// first, filtered by status, priority and search.
func (h *Handler) ListCompliance(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.ComplianceItem](c.Request().Context(), h.store, p.ID, pg, "due_date ASC",
		store.Equal("status", c.QueryParam("status")),
		store.Equal("priority", c.QueryParam("priority")),
		store.Search(c.QueryParam("search"), "grant_name", "requirement"),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetCompliance returns one compliance item.
func (h *Handler) GetCompliance(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	item, err := store.Get[model.ComplianceItem](c.Request().Context(), h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, item)
}

// CreateCompliance stores a compliance item; status defaults to Upcoming.
func (h *Handler) CreateCompliance(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req ComplianceRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	item := &model.ComplianceItem{
		GrantName:   req.GrantName,
		Requirement: req.Requirement,
		DueDate:     validate.ParseTime(req.DueDate),
		Priority:    req.Priority,
		Status:      orDefault(req.Status, model.Defaults.ComplianceStatus),
		Notes:       req.Notes,
	}
	item.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := tx.Create(item).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Created compliance item: " + item.GrantName, EntityType: "compliance", EntityID: item.ID}, nil
	})
	if err != nil {
		return err
	}

	logger.FromEcho(c).Info("Compliance item created", zap.String("compliance_id", item.ID))
	return response.Created(c, item)
}

// UpdateCompliance applies a partial update.
func (h *Handler) UpdateCompliance(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch CompliancePatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}
	parseTimes(updates, "DueDate")

	var item *model.ComplianceItem
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		item, err = store.UpdateOwned[model.ComplianceItem](tx, c.Param("id"), p.ID, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated compliance item: " + item.GrantName, EntityType: "compliance", EntityID: item.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, item)
}

// DeleteCompliance removes a compliance item.
func (h *Handler) DeleteCompliance(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		item, err := store.DeleteOwned[model.ComplianceItem](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Deleted compliance item: " + item.GrantName, EntityType: "compliance", EntityID: item.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
