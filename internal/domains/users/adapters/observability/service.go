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

	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Remember(ctx context.Context, input userports.RememberInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Remember", trace.WithAttributes(
		attribute.String("user.id", input.ID.String()),
		attribute.String("user.role", input.Role),
	))
	defer span.End()
	result, err := s.inner.Remember(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record user profile", slog.String("user.id", input.ID.String()))
	}
	s.metrics.recordRemembered(ctx, result.Role)
	return result, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetProfile", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()
	result, err := s.inner.GetProfile(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user profile", slog.String("user.id", id.String()))
	}
	return result, nil
}

func (s *Service) Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Lookup", trace.WithAttributes(attribute.Int("user.lookup.count", len(ids))))
	defer span.End()
	result, err := s.inner.Lookup(ctx, ids)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to look up user profiles")
	}
	span.SetAttributes(attribute.Int("user.lookup.found", len(result)))
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	profilesRecorded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	recorded, _ := m.Int64Counter("users.service.profiles_recorded", metric.WithDescription("Number of profile upserts from authenticated identities"))
	return serviceMetrics{profilesRecorded: recorded}
}

func (m serviceMetrics) recordRemembered(ctx context.Context, role userdomain.Role) {
	if m.profilesRecorded != nil {
		m.profilesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", string(role))))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
