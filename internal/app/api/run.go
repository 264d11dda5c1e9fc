package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/workflows"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/metrics"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/platform/ratelimit"
)

const serviceName = "pet-adoption-api"

// Run boots the adoption HTTP API and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.JWTSecretGenerated {
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()

	publisher, cleanupPublisher := BuildPublisher(ctx, cfg, logger)
	defer cleanupPublisher()

	components, err := NewComponents(db, cfg, instruments, publisher)
	if err != nil {
		return err
	}
	if err := components.BootstrapAdmin(ctx, cfg, logger); err != nil {
		return err
	}

	var decisions adoptionports.WorkflowOrchestrator = adoptionworkflows.NewInlineAdoptionWorkflows(
		components.Adoptions,
		adoptionworkflows.WithNotificationPublisher(publisher),
		adoptionworkflows.WithLogger(logger),
	)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, deciding adoptions inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		decisions = adoptionworkflows.NewTemporalAdoptionWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	limiter := ratelimit.PerMinute(cfg.AdoptionRatePerMinute)
	limiter.StartSweeper(time.Minute, ctx.Done())
	go purgeSessions(ctx, components, cfg.SessionPurgeInterval, logger)

	router := adoptionserver.NewRouter(adoptionserver.Handlers{
		Auth:      adoptionserver.NewAuthAPI(components.Users),
		Pets:      adoptionserver.NewPetAPI(components.Pets),
		Users:     adoptionserver.NewUserAPI(components.Users),
		Adoptions: adoptionserver.NewAdoptionAPI(components.Adoptions, decisions, components.Pets),
	}, adoptionserver.RouterOptions{
		ServiceName:   serviceName,
		Authenticator: components.Users,
		Metrics:       metrics.NewHTTP(),
		SubmitLimiter: limiter,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("adoption API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("adoption API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down adoption API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func purgeSessions(ctx context.Context, components *Components, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := components.Sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions purged", slog.Int64("count", removed))
			}
		}
	}
}

// ConnectTemporal dials the configured Temporal frontend with tracing and structured logging.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	return ConnectTemporal(cfg, instruments, "temporal-client")
}
