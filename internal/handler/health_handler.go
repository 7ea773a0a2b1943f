package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
)

// HealthCheck reports whether the service can reach its database.
func (h *Handler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.FromEcho(c).Error("Health check failed", zap.Error(err))
		return response.Fail(c, http.StatusServiceUnavailable, "Database unavailable")
	}
	return response.OK(c, echo.Map{"status": "ok"})
}
