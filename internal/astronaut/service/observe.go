package service

import (
	"context"

	"stargate/internal/audit"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/requestcontext"
)

const (
	opCreatePerson = "create_person"
	opRenamePerson = "rename_person"
	opRecordDuty   = "record_duty"
)

// emitAudit is fail-open: a lost audit event never fails the command.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Timestamp = s.now()
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err,
			"request_id", event.RequestID,
		)
	}
}

// rejected records a failed command in metrics and the audit trail.
func (s *Service) rejected(ctx context.Context, op string, action audit.Action, name, reason string) {
	s.metrics.IncrementRejected(op, reason)
	s.emitAudit(ctx, audit.Event{
		Action:     action,
		Outcome:    audit.OutcomeRejected,
		PersonName: name,
		Reason:     reason,
	})
}

func reasonOf(err error) string {
	return string(dErrors.CodeOf(err))
}

// invalidate drops cached projections after a commit. Cache failures are
// logged and ignored; the TTL bounds any staleness.
func (s *Service) invalidate(ctx context.Context, names ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, names...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate projection cache",
			"names", names,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
