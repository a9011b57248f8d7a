package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"stargate/internal/astronaut/metrics"
	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	"stargate/internal/audit"
)

// Store and StoreTx are the record store contract; see package store.
type (
	Store   = store.Store
	StoreTx = store.Tx
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ProjectionCache caches GetPerson results by name. Invalidate advances the
// name's generation; Fill must refuse to write when the generation passed in
// is no longer current.
type ProjectionCache interface {
	Get(ctx context.Context, name string) (*models.PersonAstronaut, bool, error)
	Generation(ctx context.Context, name string) (int64, error)
	Fill(ctx context.Context, pa *models.PersonAstronaut, gen int64) (bool, error)
	Invalidate(ctx context.Context, names ...string) error
}

// Service runs the identity registry, the duty timeline engine and the career
// projection over one record store.
type Service struct {
	store          Store
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	cache          ProjectionCache
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(c ProjectionCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock overrides time.Now for recording timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service. tx runs commands as units of work over st.
func New(st Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		store:  st,
		tx:     tx,
		logger: slog.Default(),
		tracer: otel.Tracer("stargate/astronaut"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
