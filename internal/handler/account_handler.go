package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
)

// DeleteAccountRequest must carry the literal confirmation DELETE.
type DeleteAccountRequest struct {
	Confirm string `json:"confirm" validate:"required,eq=DELETE"`
}

// DeleteAccount erases every record the principal owns, atomically. The
// identity itself lives with the identity provider and is not touched.
func (h *Handler) DeleteAccount(c echo.Context) error {
	log := logger.FromEcho(c)
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req DeleteAccountRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	removed, err := h.store.EraseAccount(c.Request().Context(), p.ID)
	if err != nil {
		log.Error("Account erasure failed", zap.Error(err))
		return err
	}

	var total int64
	for _, n := range removed {
		total += n
	}
	log.Info("Account erased", zap.Int64("rows_removed", total))
	return response.Success(c, http.StatusOK, echo.Map{"deleted": true, "removed": removed})
}
