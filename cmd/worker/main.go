package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/durable/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/durable/temporal/workflows/adoptions"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "pet-adoption-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db == nil {
		logger.Warn("worker runs on in-memory stores; decisions will not be visible to the API")
	}
	publisher, cleanupPublisher := api.BuildPublisher(ctx, cfg, logger)
	defer cleanupPublisher()

	components, err := api.NewComponents(db, cfg, instruments, publisher)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := adoptionactivities.NewActivities(components.Adoptions, publisher)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, adoptionworkflows.DecisionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(adoptionworkflows.AdoptionDecisionWorkflow, workflow.RegisterOptions{Name: adoptionworkflows.DecisionWorkflowName})
	w.RegisterActivityWithOptions(activities.Decide, activity.RegisterOptions{Name: adoptionactivities.DecideActivityName})
	w.RegisterActivityWithOptions(activities.NotifyApplicant, activity.RegisterOptions{Name: adoptionactivities.NotifyApplicantActivityName})

	logger.Info("worker listening", slog.String("taskQueue", adoptionworkflows.DecisionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
