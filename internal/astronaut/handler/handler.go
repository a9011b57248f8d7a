package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"stargate/internal/astronaut/models"
	"stargate/internal/platform/metrics"
	"stargate/internal/platform/middleware"
	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

// Service defines the interface for astronaut operations.
type Service interface {
	CreatePerson(ctx context.Context, name string) (id.PersonID, error)
	RenamePerson(ctx context.Context, currentName, newName string) (id.PersonID, error)
	RecordDuty(ctx context.Context, cmd models.RecordDutyCommand) (id.DutyID, error)
	GetPerson(ctx context.Context, name string) (*models.PersonAstronaut, error)
	ListPeople(ctx context.Context) ([]*models.PersonAstronaut, error)
	GetDutyHistory(ctx context.Context, name string) (*models.DutyHistory, error)
}

// Handler handles person and astronaut-duty HTTP endpoints.
type Handler struct {
	service        Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	timeout        time.Duration
	internalDetail bool
}

type Option func(*Handler)

// WithInternalErrorDetail makes 500 responses describe the underlying error.
// Enabled in development only.
func WithInternalErrorDetail(enabled bool) Option {
	return func(h *Handler) {
		h.internalDetail = enabled
	}
}

// New creates a new astronaut Handler.
func New(service Service, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
		metrics: m,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.internalDetail {
		httputil.WriteErrorWithDetail(w, err)
		return
	}
	httputil.WriteError(w, err)
}

// Register registers the astronaut routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestTime)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(h.timeout))
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.LatencyMiddleware(h.metrics))

	api.Get("/person", h.HandleListPeople)
	api.Get("/person/{name}", h.HandleGetPerson)
	api.Post("/person", h.HandleCreatePerson)
	api.Put("/person/{name}", h.HandleRenamePerson)
	api.Get("/astronautduty/{name}", h.HandleGetDutyHistory)
	api.Post("/astronautduty", h.HandleRecordDuty)

	r.Mount("/", api)
}

// HandleListPeople returns every person with their career projection.
func (h *Handler) HandleListPeople(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	people, err := h.service.ListPeople(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list people",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PeopleResponse{People: people})
}

// HandleGetPerson returns one person's career projection by exact name.
func (h *Handler) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := nameParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	person, err := h.service.GetPerson(ctx, name)
	if err != nil {
		h.logWarnOrError(ctx, "failed to get person", err)
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PersonResponse{Person: person})
}

// HandleCreatePerson creates a person from a JSON string body.
func (h *Handler) HandleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := decodeName(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	personID, err := h.service.CreatePerson(ctx, name)
	if err != nil {
		h.logWarnOrError(ctx, "failed to create person", err)
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IDResponse{ID: personID.String()})
}

// HandleRenamePerson renames the person at {name} to the JSON string body.
func (h *Handler) HandleRenamePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	currentName, err := nameParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	newName, err := decodeName(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	personID, err := h.service.RenamePerson(ctx, currentName, newName)
	if err != nil {
		h.logWarnOrError(ctx, "failed to rename person", err)
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, IDResponse{ID: personID.String()})
}

// HandleGetDutyHistory returns the person projection and their duties, newest first.
func (h *Handler) HandleGetDutyHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := nameParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	history, err := h.service.GetDutyHistory(ctx, name)
	if err != nil {
		h.logWarnOrError(ctx, "failed to get duty history", err)
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

// HandleRecordDuty records a duty assignment. An unknown person is a bad
// request here rather than a missing resource.
func (h *Handler) HandleRecordDuty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decodeRecordDuty(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	cmd, err := req.Command()
	if err != nil {
		h.writeError(w, err)
		return
	}
	dutyID, err := h.service.RecordDuty(ctx, cmd)
	if err != nil {
		h.logWarnOrError(ctx, "failed to record duty", err)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "person not found")
		}
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IDResponse{ID: dutyID.String()})
}

func (h *Handler) logWarnOrError(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}

// nameParam returns the decoded {name} segment. chi matches on RawPath when
// the URL carries one, leaving the segment escaped; otherwise it is already
// decoded and must not be unescaped again.
func nameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid name in path")
	}
	return name, nil
}
