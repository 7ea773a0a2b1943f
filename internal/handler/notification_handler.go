package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"gorm.io/gorm"
)

// NotificationRequest is the body of a notification create.
type NotificationRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"max=2000"`
	Kind    string `json:"kind" validate:"omitempty,oneof=info deadline system"`
}

// ListNotifications returns the principal's notifications, newest first.
// unread=true limits the list to unread ones.
func (h *Handler) ListNotifications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	var scopes []store.Scope
	if raw := c.QueryParam("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			var errs validate.Errors
			errs.Add("unread", "unread must be true or false")
			return errs
		}
		if unread {
			scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("read = ?", false) })
		}
	}

	rows, total, err := store.ListOwned[model.Notification](c.Request().Context(), h.store, p.ID, pg, "", scopes...)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// CreateNotification stores a notification; kind defaults to info.
func (h *Handler) CreateNotification(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req NotificationRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	n := &model.Notification{
		Title:   req.Title,
		Message: req.Message,
		Kind:    orDefault(req.Kind, model.Defaults.NotificationKind),
	}
	n.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := tx.Create(n).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Created notification: " + n.Title, EntityType: "notification", EntityID: n.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Created(c, n)
}

// MarkNotificationRead flags one notification as read.
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var n *model.Notification
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		n, err = store.UpdateOwned[model.Notification](tx, c.Param("id"), p.ID, map[string]interface{}{"Read": true})
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Read notification: " + n.Title, EntityType: "notification", EntityID: n.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, n)
}

// MarkAllNotificationsRead flags every unread notification as read.
func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var updated int64
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		result := tx.Model(&model.Notification{}).
			Where("user_id = ? AND read = ?", p.ID, false).
			Update("read", true)
		if result.Error != nil {
			return nil, result.Error
		}
		updated = result.RowsAffected
		if updated == 0 {
			return nil, nil
		}
		return &store.Entry{
			Action:     "Marked all notifications read",
			EntityType: "notification",
			Details:    strconv.FormatInt(updated, 10) + " notifications",
		}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, echo.Map{"updated": updated})
}

// DeleteNotification removes a notification.
func (h *Handler) DeleteNotification(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		n, err := store.DeleteOwned[model.Notification](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Deleted notification: " + n.Title, EntityType: "notification", EntityID: n.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
