package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware keeps the caller's request ID, or assigns one, and
// stores a logger tagged with it in the echo context.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
			c.Request().Header.Set(HeaderRequestID, requestID)
		}
		c.Response().Header().Set(HeaderRequestID, requestID)
		c.Set("request_id", requestID)

		c.Set(logger.EchoKey, logger.GetLogger())
		logger.With(c, zap.String("request_id", requestID))

		return next(c)
	}
}
