package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ctxKey struct{}

// EchoKey is the echo context key holding the request-scoped logger.
const EchoKey = "logger"

// FromContext returns the logger carried by ctx, or the global logger.
// Store and client code below the handlers log through it.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromEcho returns the request-scoped logger, or the global logger outside
// a request.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// With tags the request-scoped logger with fields. The tagged logger is
// visible both to FromEcho and, through the request context, to FromContext.
func With(c echo.Context, fields ...zap.Field) *zap.Logger {
	l := FromEcho(c).With(fields...)
	c.Set(EchoKey, l)
	c.SetRequest(c.Request().WithContext(WithContext(c.Request().Context(), l)))
	return l
}
