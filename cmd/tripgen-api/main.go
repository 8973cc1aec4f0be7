// README: Entry point; loads config, wires the pipeline and optional infrastructure, serves HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tripgen/internal/ai"
	"tripgen/internal/config"
	httptransport "tripgen/internal/http"
	"tripgen/internal/infra"
	"tripgen/internal/logging"
	"tripgen/internal/maps"
	"tripgen/internal/metrics"
	"tripgen/internal/modules/ratelimit"
	"tripgen/internal/modules/usage"
	"tripgen/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("tripgen-api stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	gateway, closeGateway, err := ai.Open(ctx, cfg.Gemini.Transport, ai.GeminiOptions{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	if err != nil {
		return err
	}
	defer closeGateway()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	plannerOpts := []service.Option{service.WithMetrics(m)}
	deps := httptransport.ServerDeps{
		Metrics:         m,
		Logger:          logger,
		GenerateTimeout: cfg.HTTP.GenerateTimeout,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		TrustedProxies:  cfg.HTTP.TrustedProxies,
	}

	if cfg.DB.DSN != "" {
		if err := infra.Migrate(cfg.DB.DSN); err != nil {
			return err
		}
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		usageSvc := usage.NewService(usage.NewStore(dbPool))
		plannerOpts = append(plannerOpts, service.WithRecorder(usageSvc))
		deps.Usage = usageSvc
		logger.Info("usage ledger enabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	policy := ratelimit.Policy{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}
	if policy.Enabled() {
		if cfg.Redis.Addr != "" {
			redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			deps.Limiter = ratelimit.NewRedisLimiter(redisClient, policy)
			logger.Info("rate limiting via redis", slog.String("addr", cfg.Redis.Addr))
		} else {
			mem := ratelimit.NewMemoryLimiter(policy)
			deps.Limiter = mem
			g.Go(func() error {
				mem.RunSweeper(gctx, policy.Window)
				return nil
			})
			logger.Info("rate limiting in memory")
		}
	}

	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.CacheTTL)
		if err != nil {
			return err
		}
		deps.Places = places
	}

	deps.Planner = service.NewTripPlanner(gateway, logger, plannerOpts...)
	handler := httptransport.NewServer(deps)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", cfg.HTTP.Addr), slog.String("transport", cfg.Gemini.Transport))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
