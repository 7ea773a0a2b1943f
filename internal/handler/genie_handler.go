package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/genie"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
)

// GenieRequest is a conversation sent to an assistant.
type GenieRequest struct {
	Messages []genie.Message `json:"messages" validate:"required,min=1,max=50,dive"`
	Stream   bool            `json:"stream"`
}

// AskGenie runs the named assistant. With stream=true the reply is written
// as plain text, flushed fragment by fragment; otherwise it is returned in
// the envelope.
func (h *Handler) AskGenie(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := principal(c); err != nil {
		return err
	}

	assistant, ok := genie.Lookup(c.Param("assistant"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown assistant")
	}

	var req GenieRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if !req.Stream {
		text, err := h.genie.Complete(ctx, assistant, req.Messages)
		if err != nil {
			log.Error("Genie completion failed", zap.String("assistant", assistant.Name), zap.Error(err))
			return err
		}
		return response.OK(c, echo.Map{"assistant": assistant.Name, "content": text})
	}

	res := c.Response()
	started := false
	err := h.genie.Stream(ctx, assistant, req.Messages, func(delta string) error {
		if !started {
			res.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set("X-Content-Type-Options", "nosniff")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := res.Write([]byte(delta)); err != nil {
			return err
		}
		res.Flush()
		return nil
	})
	if err != nil {
		log.Error("Genie stream failed",
			zap.String("assistant", assistant.Name),
			zap.Bool("partial", started),
			zap.Error(err))
		if started {
			// Headers are gone; the client sees a truncated body.
			return nil
		}
		return err
	}
	if !started {
		return c.NoContent(http.StatusOK)
	}
	return nil
}
