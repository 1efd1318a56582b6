package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"
	adoptionsobs "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability"
	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionsports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petsworkflows "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/workflows"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usersobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/accesscontrol"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	"github.com/Apurer/pet-adoption-api/internal/platform/metrics"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

const serviceName = "pet-adoption-api"

// Run boots the adoption HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Options{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogFormat:   cfg.LogFormat,
		LogLevel:    platformobservability.ParseLevel(cfg.LogLevel),
	})
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
	flushSentry := platformobservability.InitSentry(cfg.SentryDSN, cfg.Environment, cfg.Release)
	defer flushSentry()

	backend, closeBackend, err := OpenBackend(ctx, cfg.PostgresDSN, cfg.MigrateOnStart, logger)
	if err != nil {
		return err
	}
	defer closeBackend()
	logger.Info("storage configured", slog.String("backend", backend.Name))

	svc, err := NewServices(cfg, backend, instruments)
	if err != nil {
		return err
	}
	if temporalClient, err := ConnectTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, creating pets inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		svc.Workflows = petsworkflows.NewTemporalPetWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router, err := NewRouter(cfg, logger, backend, svc)
	if err != nil {
		return err
	}
	return serve(ctx, logger, cfg.Addr(), router)
}

// Services are the decorated application services the HTTP layer calls.
type Services struct {
	Pets      petsports.Service
	Workflows petsports.WorkflowOrchestrator
	Adoptions adoptionsports.Service
	Users     userports.Service
}

// NewServices wires the application services over backend. Workflows start
// inline; Run swaps in Temporal when it is reachable. instruments may be nil.
func NewServices(cfg Config, backend *Backend, instruments *platformobservability.Instruments) (Services, error) {
	statuses, err := cfg.PetDefaultStatuses()
	if err != nil {
		return Services{}, err
	}
	logger := slog.Default()
	if instruments != nil && instruments.Logger != nil {
		logger = instruments.Logger
	}
	users := usersobs.New(
		userapp.NewService(backend.Users),
		usersobs.WithLogger(logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	pets := petsobs.New(
		petsapp.NewService(backend.Pets, backend.Tx.ForPets(),
			petsapp.WithDefaultStatus(statuses...),
			petsapp.WithPageSize(cfg.DefaultPageSize, cfg.MaxPageSize),
		),
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	adoptions := adoptionsobs.New(
		adoptionsapp.NewService(backend.Applications, backend.Pets, backend.Tx,
			adoptionsapp.WithApplicantDirectory(users),
		),
		adoptionsobs.WithLogger(logger),
		adoptionsobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionsobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	return Services{
		Pets:      pets,
		Workflows: petsworkflows.NewInlinePetWorkflows(pets),
		Adoptions: adoptions,
		Users:     users,
	}, nil
}

// NewRouter builds the gin engine with authentication, RBAC, tracing, and
// Prometheus middleware.
func NewRouter(cfg Config, logger *slog.Logger, backend *Backend, svc Services) (*gin.Engine, error) {
	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	rbac, err := accesscontrol.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load access policy: %w", err)
	}
	httpMetrics := metrics.New()

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName), httpMetrics.Middleware())
	return adoptionserver.NewRouterWithGinEngine(engine, adoptionserver.ApiHandleFunctions{
		PetAPI:      adoptionserver.NewPetAPI(svc.Pets, svc.Workflows, svc.Users),
		AdoptionAPI: adoptionserver.NewAdoptionAPI(svc.Adoptions),
		HealthAPI:   adoptionserver.NewHealthAPI(backend.Ping, httpMetrics.Handler()),
		Security: adoptionserver.NewSecurity(verifier, rbac,
			adoptionserver.WithProfileRecorder(svc.Users),
			adoptionserver.WithSecurityLogger(logger),
		),
	}), nil
}

func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("adoption API listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("adoption API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down adoption API")
	return server.Shutdown(shutdownCtx)
}

// ConnectTemporal dials the Temporal frontend with tracing and structured logging.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
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
