package router

import (
	"net"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suteetoe/grantdesk/internal/handler"
	mid "github.com/suteetoe/grantdesk/internal/middleware"
	"github.com/suteetoe/grantdesk/internal/ratelimit"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options wires the router's collaborators.
type Options struct {
	Handler  *handler.Handler
	Pipeline *mid.Pipeline
	Rules    ratelimit.Rules
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Tracing wraps every request in an OpenTelemetry span.
	Tracing     bool
	ServiceName string
	// IPExtractor decides the client address used for rate limit keys;
	// nil means the peer address.
	IPExtractor echo.IPExtractor
}

// IPExtractor believes X-Forwarded-For only when the request arrives from one
// of trusted. With no trusted ranges the peer address is used.
func IPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipnet := range trusted {
		opts = append(opts, echo.TrustIPRange(ipnet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// New builds the echo instance with every route.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler
	e.IPExtractor = opts.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	if opts.Tracing {
		e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(opts.ServiceName)))
	}
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	h := opts.Handler
	e.GET("/health", h.HealthCheck)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	public := opts.Pipeline.Public(opts.Rules.Public)
	moderate := opts.Pipeline.Protect(opts.Rules.Moderate)
	strict := opts.Pipeline.Protect(opts.Rules.Strict)

	api.GET("/opportunities", h.ListOpportunities, public)
	api.GET("/opportunities/:id", h.GetOpportunity, public)

	api.GET("/bookmarks", h.ListBookmarks, moderate)
	api.POST("/bookmarks", h.CreateBookmark, moderate)
	api.DELETE("/bookmarks/:id", h.DeleteBookmark, moderate)

	api.GET("/applications", h.ListApplications, moderate)
	api.POST("/applications", h.CreateApplication, moderate)
	api.GET("/applications/:id", h.GetApplication, moderate)
	api.PUT("/applications/:id", h.ReplaceApplication, moderate)
	api.PATCH("/applications/:id", h.UpdateApplication, moderate)
	api.DELETE("/applications/:id", h.DeleteApplication, moderate)

	api.GET("/compliance", h.ListCompliance, moderate)
	api.POST("/compliance", h.CreateCompliance, moderate)
	api.GET("/compliance/:id", h.GetCompliance, moderate)
	api.PATCH("/compliance/:id", h.UpdateCompliance, moderate)
	api.DELETE("/compliance/:id", h.DeleteCompliance, moderate)

	api.GET("/donors", h.ListDonors, moderate)
	api.POST("/donors", h.CreateDonor, moderate)
	api.GET("/donors/:id", h.GetDonor, moderate)
	api.PATCH("/donors/:id", h.UpdateDonor, moderate)
	api.DELETE("/donors/:id", h.DeleteDonor, moderate)

	api.GET("/documents", h.ListDocuments, moderate)
	api.POST("/documents", h.CreateDocument, moderate)
	api.GET("/documents/:id", h.GetDocument, moderate)
	api.PATCH("/documents/:id", h.UpdateDocument, moderate)
	api.DELETE("/documents/:id", h.DeleteDocument, moderate)

	api.GET("/notifications", h.ListNotifications, moderate)
	api.POST("/notifications", h.CreateNotification, moderate)
	api.POST("/notifications/read-all", h.MarkAllNotificationsRead, moderate)
	api.PATCH("/notifications/:id/read", h.MarkNotificationRead, moderate)
	api.DELETE("/notifications/:id", h.DeleteNotification, moderate)

	api.GET("/practice-sessions", h.ListPracticeSessions, moderate)
	api.POST("/practice-sessions", h.CreatePracticeSession, moderate)
	api.GET("/practice-sessions/:id", h.GetPracticeSession, moderate)
	api.PATCH("/practice-sessions/:id", h.UpdatePracticeSession, moderate)
	api.DELETE("/practice-sessions/:id", h.DeletePracticeSession, moderate)
	api.POST("/practice-sessions/:id/messages", h.SendPracticeMessage, strict)

	api.GET("/preferences", h.GetPreferences, moderate)
	api.PUT("/preferences", h.ReplacePreferences, moderate)
	api.PATCH("/preferences", h.UpdatePreferences, moderate)

	api.GET("/organization", h.GetOrganization, moderate)
	api.PUT("/organization", h.ReplaceOrganization, moderate)
	api.PATCH("/organization", h.UpdateOrganization, moderate)

	api.GET("/activity", h.ListActivity, moderate)
	api.GET("/dashboard/stats", h.DashboardStats, moderate)

	api.POST("/genie/:assistant", h.AskGenie, strict)

	api.DELETE("/account", h.DeleteAccount, strict)

	return e
}
