package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/suteetoe/grantdesk/internal/genie"
	"github.com/suteetoe/grantdesk/internal/handler"
	"github.com/suteetoe/grantdesk/internal/identity"
	mid "github.com/suteetoe/grantdesk/internal/middleware"
	"github.com/suteetoe/grantdesk/internal/ratelimit"
	"github.com/suteetoe/grantdesk/internal/router"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/pkg/config"
	"github.com/suteetoe/grantdesk/pkg/database"
	"github.com/suteetoe/grantdesk/pkg/jwtutil"
	"github.com/suteetoe/grantdesk/pkg/telemetry"
	"github.com/suteetoe/grantdesk/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serve(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appConfig, log, db, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer database.Close(db)

	log.Info("Starting grantdesk",
		zap.String("version", Version),
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	var gatherer promclient.Gatherer
	if appConfig.Metrics.Enabled {
		reg := promclient.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prometheus.Register(reg)
		gatherer = reg
		log.Info("Prometheus metrics initialized")
	}

	if appConfig.Tracing.Enabled {
		shutdownTracer, err := telemetry.InitTracer(appConfig.ServiceName, nil, log)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	provider, err := newIdentityProvider(appConfig.Auth, log)
	if err != nil {
		return err
	}

	rules := ratelimit.RulesFromConfig(appConfig.RateLimit)
	limitStore, closeStore, err := newRateLimitStore(ctx, appConfig.RateLimit, rules, log)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter := ratelimit.NewLimiter(limitStore, log)
	sweeper, err := ratelimit.NewSweeper(limiter, appConfig.RateLimit.SweepInterval, log)
	if err != nil {
		return err
	}

	trusted, err := appConfig.Server.TrustedProxyRanges()
	if err != nil {
		return err
	}

	h := handler.New(store.New(db), genie.NewClient(appConfig.Genie, log))
	e := router.New(router.Options{
		Handler:     h,
		Pipeline:    mid.NewPipeline(provider, limiter),
		Rules:       rules,
		Gatherer:    gatherer,
		Tracing:     appConfig.Tracing.Enabled,
		ServiceName: appConfig.ServiceName,
		IPExtractor: router.IPExtractor(trusted),
	})

	srv := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      e,
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}

func newIdentityProvider(cfg config.AuthConfig, log *zap.Logger) (identity.Provider, error) {
	switch cfg.Provider {
	case "jwt":
		jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: cfg.SigningKey, Issuer: cfg.Issuer})
		log.Info("Session tokens verified locally")
		return identity.NewSessionProvider(jwt, cfg.CookieName), nil
	case "remote":
		log.Info("Session tokens verified by identity provider", zap.String("url", cfg.RemoteURL))
		return identity.NewRemoteProvider(cfg.RemoteURL, cfg.CookieName, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.Provider)
	}
}

// newRateLimitStore returns the configured counter store and a func that
// releases it.
func newRateLimitStore(ctx context.Context, cfg config.RateLimitConfig, rules ratelimit.Rules, log *zap.Logger) (ratelimit.Store, func(), error) {
	if cfg.Store != "nats" {
		log.Info("Rate limit counters kept in memory")
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name(appName))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	kv, err := ratelimit.NewKVStore(ctx, js, cfg.Bucket, rules.MaxWindow())
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	log.Info("Rate limit counters kept in NATS KV", zap.String("bucket", cfg.Bucket))
	return kv, func() {
		if err := nc.Drain(); err != nil {
			log.Warn("NATS drain failed", zap.Error(err))
		}
	}, nil
}
