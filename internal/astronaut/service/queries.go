package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/requestcontext"
)

// GetPerson returns the career projection of the named person.
func (s *Service) GetPerson(ctx context.Context, name string) (pa *models.PersonAstronaut, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.GetPerson")
	defer func() { endSpan(span, err) }()
	name = strings.TrimSpace(name)
	span.SetAttributes(attribute.String("person.name", name))

	if cached, ok := s.cachedPerson(ctx, name); ok {
		return cached, nil
	}
	gen, fill := s.cacheGeneration(ctx, name)

	pa, err = s.store.FindPersonAstronaut(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}

	if fill {
		if _, err := s.cache.Fill(ctx, pa, gen); err != nil {
			s.logger.WarnContext(ctx, "failed to cache person",
				"name", name,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return pa, nil
}

// cacheGeneration captures the name's generation before the store read. fill
// is false when there is no cache or the generation is unknown.
func (s *Service) cacheGeneration(ctx context.Context, name string) (gen int64, fill bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, name)
	if err != nil {
		s.logger.WarnContext(ctx, "projection cache generation lookup failed",
			"name", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return 0, false
	}
	return gen, true
}

func (s *Service) cachedPerson(ctx context.Context, name string) (*models.PersonAstronaut, bool) {
	if s.cache == nil {
		return nil, false
	}
	pa, ok, err := s.cache.Get(ctx, name)
	switch {
	case err != nil:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "projection cache lookup failed",
			"name", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, false
	case !ok:
		s.metrics.IncrementCacheLookup("miss")
		return nil, false
	default:
		s.metrics.IncrementCacheLookup("hit")
		return pa, true
	}
}

// ListPeople returns every person's projection ordered by name.
func (s *Service) ListPeople(ctx context.Context) (people []*models.PersonAstronaut, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.ListPeople")
	defer func() { endSpan(span, err) }()

	people, err = s.store.ListPeople(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list people")
	}
	if people == nil {
		people = []*models.PersonAstronaut{}
	}
	return people, nil
}

// GetDutyHistory returns the person's projection and duties, newest first.
// An unknown name yields a nil Person and no duties rather than an error.
func (s *Service) GetDutyHistory(ctx context.Context, name string) (h *models.DutyHistory, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.GetDutyHistory")
	defer func() { endSpan(span, err) }()
	name = strings.TrimSpace(name)
	span.SetAttributes(attribute.String("person.name", name))

	h = &models.DutyHistory{Duties: []*models.AstronautDuty{}}
	pa, err := s.store.FindPersonAstronaut(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return h, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	h.Person = pa

	duties, err := s.store.ListDutiesByPerson(ctx, pa.PersonID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load duties")
	}
	if duties != nil {
		h.Duties = duties
	}
	return h, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
