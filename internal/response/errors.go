package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/identity"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
)

// Messages written for the fixed failure classes.
const (
	MsgValidation   = "Validation failed"
	MsgUnauthorized = "Unauthorized"
	MsgTooMany      = "Too many requests, please try again later."
	MsgInternal     = "Internal server error"
)

// ErrorHandler is the echo HTTPErrorHandler. It turns every error returned
// by a handler or middleware into the failure envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message, details := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromEcho(c).Error("Request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = Fail(c, status, message, details...)
	}
	if writeErr != nil {
		logger.FromEcho(c).Error("Failed to write error response", zap.Error(writeErr))
	}
}

func classify(err error) (int, string, []validate.FieldError) {
	var verrs validate.Errors
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, validate.ErrInvalidJSON):
		return http.StatusBadRequest, validate.ErrInvalidJSON.Error(), nil
	case errors.As(err, &verrs):
		return http.StatusBadRequest, MsgValidation, verrs
	case errors.Is(err, identity.ErrUnauthorized), errors.Is(err, identity.ErrNoSession):
		return http.StatusUnauthorized, MsgUnauthorized, nil
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, store.ErrForbidden.Error(), nil
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, store.ErrNotFound.Error(), nil
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, store.ErrConflict.Error(), nil
	case errors.As(err, &httpErr):
		return httpErr.Code, httpMessage(httpErr), nil
	default:
		return http.StatusInternalServerError, MsgInternal, nil
	}
}

func httpMessage(he *echo.HTTPError) string {
	switch he.Code {
	case http.StatusTooManyRequests:
		return MsgTooMany
	case http.StatusUnauthorized:
		return MsgUnauthorized
	}
	if he.Code >= http.StatusInternalServerError {
		return MsgInternal
	}
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return fmt.Sprint(he.Message)
}
