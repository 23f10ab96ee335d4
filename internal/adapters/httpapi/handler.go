// Package httpapi serves the profile backend over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"profilereview/docs/schema/openapi"
	"profilereview/internal/archive"
	"profilereview/internal/observability"
	"profilereview/internal/profile"
	"profilereview/pkg/domain"
)

const maxBodyBytes = 1 << 20

// Service is the backend surface the handler exposes.
type Service interface {
	Profiles() []string
	Specification(ctx context.Context, email string, diff bool) (domain.ProfileSpecification, error)
	SubmitChangeLog(ctx context.Context, email string, records []domain.ChangeRecord) (domain.Result, error)
	AcceptPending(ctx context.Context, email string) error
	DiscardPending(ctx context.Context, email string) error
	AddProjectEntry(ctx context.Context, email string, args domain.AddProjectArgs) (domain.ProjectExperienceTransport, error)
	AddSkill(ctx context.Context, email string, args domain.AddSkillArgs) (domain.Skill, error)
	History(ctx context.Context, email string) ([]archive.Entry, error)
}

var _ Service = (*profile.Service)(nil)

// Handler provides HTTP access to the profile workflow.
type Handler struct {
	svc     Service
	logger  *slog.Logger
	metrics *observability.Metrics
	health  func(context.Context) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithHealthCheck makes /healthz report the result of check.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(h *Handler) { h.health = check }
}

// NewHandler constructs the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the chi router carrying every backend route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi.yaml", handleOpenAPI)
		r.Get("/profiles", h.handleListProfiles)
		r.Route("/profiles/{email}", func(r chi.Router) {
			r.Get("/specification", h.handleSpecification)
			r.Put("/changes", h.handleSubmit)
			r.Post("/accept", h.handleAccept)
			r.Delete("/pending", h.handleDiscard)
			r.Get("/history", h.handleHistory)
		})
		r.Patch("/project-experience", h.handleAddProject)
		r.Patch("/skills", h.handleAddSkill)
	})
	return r
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveRequest(r.Method, route, status, time.Since(started))
		h.logger.Debug("request served", "method", r.Method, "route", route, "status", status,
			"request_id", middleware.GetReqID(r.Context()), "duration", time.Since(started))
	})
}

func handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.ProfileReviewSpec)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"profiles": h.svc.Profiles()})
}

func (h *Handler) handleSpecification(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(w, r)
	if !ok {
		return
	}
	diff := false
	if raw := r.URL.Query().Get("diff"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "diff must be a boolean")
			return
		}
		diff = parsed
	}
	spec, err := h.svc.Specification(r.Context(), email, diff)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(w, r)
	if !ok {
		return
	}
	var records []domain.ChangeRecord
	if err := decodeBody(r, &records); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.SubmitChangeLog(r.Context(), email, records)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if res.Violations == nil {
		res.Violations = []domain.Violation{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(w, r)
	if !ok {
		return
	}
	if err := h.svc.AcceptPending(r.Context(), email); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(w, r)
	if !ok {
		return
	}
	if err := h.svc.DiscardPending(r.Context(), email); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.History(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleAddProject(w http.ResponseWriter, r *http.Request) {
	email, ok := queryEmail(w, r)
	if !ok {
		return
	}
	var args domain.AddProjectArgs
	if err := decodeBody(r, &args); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.svc.AddProjectEntry(r.Context(), email, args)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	email, ok := queryEmail(w, r)
	if !ok {
		return
	}
	var args domain.AddSkillArgs
	if err := decodeBody(r, &args); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(args.Name) == "" || strings.TrimSpace(args.Area) == "" {
		writeError(w, http.StatusBadRequest, "skill name and area required")
		return
	}
	skill, err := h.svc.AddSkill(r.Context(), email, args)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skill)
}

type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequestError{err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func pathEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || strings.TrimSpace(email) == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return "", false
	}
	return email, true
}

func queryEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter required")
		return "", false
	}
	return email, true
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  domain.ErrNotFound
		violation domain.RuleViolationError
		bad       badRequestError
	)
	switch {
	case errors.As(err, &bad), errors.Is(err, domain.ErrInvalidChange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, profile.ErrLocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &violation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      violation.Error(),
			"violations": violation.Result.Violations,
		})
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
