package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/identity"
	"github.com/suteetoe/grantdesk/internal/ratelimit"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"github.com/suteetoe/grantdesk/prometheus"
	"go.uber.org/zap"
)

// Pipeline composes the per-route guard: resolve the principal, apply the
// rate limit keyed by principal or client IP, then reject anonymous callers
// on protected routes. Handlers only see requests that passed every step.
type Pipeline struct {
	provider identity.Provider
	limiter  *ratelimit.Limiter
}

// NewPipeline creates a Pipeline.
func NewPipeline(provider identity.Provider, limiter *ratelimit.Limiter) *Pipeline {
	return &Pipeline{provider: provider, limiter: limiter}
}

// Protect guards a route that requires a principal.
func (p *Pipeline) Protect(rule ratelimit.Rule) echo.MiddlewareFunc {
	return p.guard(rule, true)
}

// Public guards a route that anonymous callers may use. The principal, if
// any, is still made available to the handler.
func (p *Pipeline) Public(rule ratelimit.Rule) echo.MiddlewareFunc {
	return p.guard(rule, false)
}

func (p *Pipeline) guard(rule ratelimit.Rule, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)
			req := c.Request()

			reason := "no_session"
			principal, err := p.provider.Resolve(req.Context(), req)
			if err != nil {
				principal = nil
				if !errors.Is(err, identity.ErrNoSession) {
					reason = "provider_error"
					log.Warn("Identity provider failed", zap.Error(err))
				}
			}

			key := "ip:" + c.RealIP()
			if principal != nil {
				key = "user:" + principal.ID
			}

			decision := p.limiter.Check(req.Context(), key, rule)
			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				header.Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				header.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
				log.Warn("Rate limit exceeded",
					zap.String("rule", rule.Name),
					zap.String("key", key),
					zap.Int("retry_after", decision.RetryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests)
			}

			if principal == nil {
				if required {
					prometheus.RecordAuthFailure(reason)
					log.Warn("Unauthorized request",
						zap.String("path", c.Path()),
						zap.String("reason", reason))
					return identity.ErrUnauthorized
				}
				return next(c)
			}

			SetPrincipal(c, principal)
			logger.With(c, zap.String("user_id", principal.ID))
			return next(c)
		}
	}
}
