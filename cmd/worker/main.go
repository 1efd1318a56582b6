package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	petsobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petactivities "github.com/Apurer/pet-adoption-api/internal/durable/temporal/activities/pets"
	petworkflows "github.com/Apurer/pet-adoption-api/internal/durable/temporal/workflows/pets"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

func main() {
	_ = godotenv.Load()
	cfg, err := api.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()
	const serviceName = "pet-adoption-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Options{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogFormat:   cfg.LogFormat,
		LogLevel:    platformobservability.ParseLevel(cfg.LogLevel),
	})
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
	defer platformobservability.InitSentry(cfg.SentryDSN, cfg.Environment, cfg.Release)()

	backend, closeBackend, err := api.OpenBackend(ctx, cfg.PostgresDSN, cfg.MigrateOnStart, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeBackend()
	if backend.DB == nil {
		logger.Warn("worker is using in-memory storage; pets it creates are invisible to the API")
	}
	petService := petsobs.New(
		petsapp.NewService(backend.Pets, backend.Tx.ForPets()),
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	petActivities := petactivities.NewActivities(petService)

	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, petworkflows.PetIntakeTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(petworkflows.PetIntakeWorkflow, workflow.RegisterOptions{Name: petworkflows.PetIntakeWorkflowName})
	w.RegisterActivityWithOptions(petActivities.PersistPet, activity.RegisterOptions{Name: petactivities.PersistPetActivityName})

	logger.Info("worker listening", slog.String("taskQueue", petworkflows.PetIntakeTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
