package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	"stargate/internal/audit"
	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/requestcontext"
)

// CreatePerson registers a person under a unique, case-sensitive name.
func (s *Service) CreatePerson(ctx context.Context, name string) (personID id.PersonID, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.CreatePerson")
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveCommand(opCreatePerson, time.Now())

	p, err := models.NewPerson(id.NewPersonID(), name)
	if err != nil {
		s.rejected(ctx, opCreatePerson, audit.ActionPersonCreated, name, reasonOf(err))
		return id.PersonID{}, err
	}
	span.SetAttributes(attribute.String("person.name", p.Name))
	s.logger.InfoContext(ctx, "creating person",
		"name", p.Name,
		"request_id", requestcontext.RequestID(ctx),
	)

	err = s.tx.RunInTx(ctx, []string{p.Name}, func(st Store) error {
		_, err := st.FindPersonByName(ctx, p.Name)
		if err == nil {
			return dErrors.New(dErrors.CodeConflict, "person with this name already exists")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
		}
		return st.CreatePerson(ctx, p)
	})
	if err != nil {
		err = translate(err, "person not found", "person with this name already exists", "failed to create person")
		s.rejected(ctx, opCreatePerson, audit.ActionPersonCreated, p.Name, reasonOf(err))
		return id.PersonID{}, err
	}

	s.invalidate(ctx, p.Name)
	s.metrics.IncrementPeopleCreated()
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionPersonCreated,
		Outcome:    audit.OutcomeAccepted,
		PersonID:   p.ID.String(),
		PersonName: p.Name,
	})
	s.logger.InfoContext(ctx, "person created",
		"person_id", p.ID.String(),
		"name", p.Name,
		"request_id", requestcontext.RequestID(ctx),
	)
	return p.ID, nil
}

// RenamePerson changes a person's name in place. Duties and the career summary
// are untouched. Renaming to the current name succeeds without writing.
func (s *Service) RenamePerson(ctx context.Context, currentName, newName string) (personID id.PersonID, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.RenamePerson")
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveCommand(opRenamePerson, time.Now())

	currentName = strings.TrimSpace(currentName)
	newName, err = models.NormalizeName(newName)
	if err != nil {
		s.rejected(ctx, opRenamePerson, audit.ActionPersonRenamed, currentName, reasonOf(err))
		return id.PersonID{}, err
	}
	span.SetAttributes(attribute.String("person.name", currentName), attribute.String("person.new_name", newName))

	var renamed *models.Person
	err = s.tx.RunInTx(ctx, []string{currentName, newName}, func(st Store) error {
		p, err := st.FindPersonByName(ctx, currentName)
		if err != nil {
			return err
		}
		renamed = p
		if currentName == newName {
			return nil
		}
		other, err := st.FindPersonByName(ctx, newName)
		if err == nil && other.ID != p.ID {
			return dErrors.New(dErrors.CodeConflict, "another person already has this name")
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
		}
		p.Name = newName
		return st.UpdatePerson(ctx, p)
	})
	if err != nil {
		err = translate(err, "person not found", "another person already has this name", "failed to rename person")
		s.rejected(ctx, opRenamePerson, audit.ActionPersonRenamed, currentName, reasonOf(err))
		return id.PersonID{}, err
	}
	if currentName == newName {
		return renamed.ID, nil
	}

	s.invalidate(ctx, currentName, newName)
	s.metrics.IncrementPeopleRenamed()
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionPersonRenamed,
		Outcome:    audit.OutcomeAccepted,
		PersonID:   renamed.ID.String(),
		PersonName: newName,
		Reason:     "renamed from " + currentName,
	})
	s.logger.InfoContext(ctx, "person renamed",
		"person_id", renamed.ID.String(),
		"from", currentName,
		"to", newName,
		"request_id", requestcontext.RequestID(ctx),
	)
	return renamed.ID, nil
}

// translate turns store sentinels escaping a unit of work into coded errors.
// Errors that already carry a code pass through.
func translate(err error, notFound, conflict, internal string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, store.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, store.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, conflict)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internal)
	}
}
