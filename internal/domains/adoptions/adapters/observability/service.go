package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability/service"

// Service decorates the adoption service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core adoption service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Submit(ctx context.Context, input types.SubmitInput) (*types.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, "AdoptionService.Submit", trace.WithAttributes(
		attribute.String("pet.id", input.PetID.String()),
		attribute.String("applicant.id", input.ApplicantID.String()),
	))
	defer span.End()
	result, err := s.inner.Submit(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit adoption application",
			slog.String("pet.id", input.PetID.String()),
			slog.String("applicant.id", input.ApplicantID.String()),
		)
	}
	span.SetAttributes(attribute.String("application.id", result.Application.Entity.ID.String()))
	s.metrics.recordDecision(ctx, domain.StatusPending)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "adoption application submitted",
		slog.String("application.id", result.Application.Entity.ID.String()),
		slog.String("pet.id", input.PetID.String()),
	)
	return result, nil
}

func (s *Service) ListForApplicant(ctx context.Context, applicantID uuid.UUID) ([]*types.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, "AdoptionService.ListForApplicant", trace.WithAttributes(attribute.String("applicant.id", applicantID.String())))
	defer span.End()
	result, err := s.inner.ListForApplicant(ctx, applicantID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list applicant applications", slog.String("applicant.id", applicantID.String()))
	}
	span.SetAttributes(attribute.Int("applications.count", len(result)))
	return result, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*types.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, "AdoptionService.ListAll")
	defer span.End()
	result, err := s.inner.ListAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list applications")
	}
	span.SetAttributes(attribute.Int("applications.count", len(result)))
	return result, nil
}

func (s *Service) ListForPet(ctx context.Context, petID uuid.UUID) ([]*types.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, "AdoptionService.ListForPet", trace.WithAttributes(attribute.String("pet.id", petID.String())))
	defer span.End()
	result, err := s.inner.ListForPet(ctx, petID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pet applications", slog.String("pet.id", petID.String()))
	}
	span.SetAttributes(attribute.Int("applications.count", len(result)))
	return result, nil
}

func (s *Service) Approve(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error) {
	return s.decide(ctx, "AdoptionService.Approve", input, domain.StatusApproved, s.inner.Approve)
}

func (s *Service) Reject(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error) {
	return s.decide(ctx, "AdoptionService.Reject", input, domain.StatusRejected, s.inner.Reject)
}

func (s *Service) decide(
	ctx context.Context,
	spanName string,
	input types.ApplicationIdentifier,
	outcome domain.Status,
	call func(context.Context, types.ApplicationIdentifier) (*types.ApplicationView, error),
) (*types.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("application.id", input.ID.String())))
	defer span.End()
	result, err := call(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to decide adoption application",
			slog.String("application.id", input.ID.String()),
			slog.String("decision", string(outcome)),
		)
	}
	s.metrics.recordDecision(ctx, outcome)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "adoption application decided",
		slog.String("application.id", input.ID.String()),
		slog.String("decision", string(outcome)),
	)
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	transitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("adoptions.service.transitions", metric.WithDescription("Adoption applications entering each status"))
	return serviceMetrics{transitions: transitions}
}

func (m serviceMetrics) recordDecision(ctx context.Context, status domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("application.status", string(status))))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
