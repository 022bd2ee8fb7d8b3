// Package handlers provides the HTTP API over the debate engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/engine"
	"github.com/alienxp03/triad/internal/export"
	"github.com/alienxp03/triad/internal/provider"
)

// runTimeout bounds a debate started in the background.
const runTimeout = 30 * time.Minute

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   *engine.Engine
	registry *provider.Registry
}

// New creates a new Handler.
func New(eng *engine.Engine, registry *provider.Registry) *Handler {
	return &Handler{
		engine:   eng,
		registry: registry,
	}
}

// Router returns a chi router with every route registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/participants", h.handleAPIParticipants)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.handleAPIListSessions)
			r.Post("/", h.handleAPICreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleAPIGetSession)
				r.Delete("/", h.handleAPIDeleteSession)
				r.Post("/rounds", h.handleAPIStartRound)
				r.Post("/run", h.handleAPIRunSession)
				r.Post("/archive", h.handleAPIArchiveSession)
				r.Get("/rotation", h.handleAPIRotation)
				r.Get("/stream", h.handleSessionStream)
			})
		})

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", h.handleAPIListArchived)
			r.Get("/{id}", h.handleAPIGetArchived)
			r.Delete("/{id}", h.handleAPIDeleteArchived)
			r.Get("/{id}/export/{format}", h.handleExportTranscript)
		})
	})
}

// requestLogger logs each request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]string{"status": "ok"})
}

func (h *Handler) handleAPIParticipants(w http.ResponseWriter, r *http.Request) {
	var bindings map[core.Participant]string
	if h.registry != nil {
		bindings = h.registry.Bindings()
	}

	type participantView struct {
		core.ParticipantDisplay
		Source string `json:"source,omitempty"`
	}

	result := make([]participantView, 0, core.ParticipantCount)
	for _, d := range core.DisplayTable() {
		result = append(result, participantView{ParticipantDisplay: d, Source: bindings[d.Participant]})
	}

	roles := make([]core.RoleInfo, 0, core.RoleCount)
	for _, role := range core.Roles() {
		roles = append(roles, role.Info())
	}

	h.json(w, map[string]interface{}{
		"participants": result,
		"roles":        roles,
	})
}

func (h *Handler) handleAPIListSessions(w http.ResponseWriter, r *http.Request) {
	h.json(w, h.engine.ListSessions())
}

func (h *Handler) handleAPICreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxRounds int `json:"max_rounds"`
	}
	if err := decodeOptional(r, &req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaxRounds < 0 {
		h.jsonError(w, "max_rounds must not be negative", http.StatusBadRequest)
		return
	}

	state := h.engine.CreateSession(req.MaxRounds)
	h.jsonStatus(w, state, http.StatusCreated)
}

func (h *Handler) handleAPIGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.json(w, state)
}

func (h *Handler) handleAPIDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteSession(chi.URLParam(r, "id")); err != nil {
		h.engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAPIStartRound(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Input string `json:"input"`
	}
	if err := decodeOptional(r, &req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	round, started, err := h.engine.StartRound(r.Context(), id, req.Input)
	if err != nil {
		h.engineError(w, err)
		return
	}

	state, err := h.engine.GetSession(id)
	if err != nil {
		h.engineError(w, err)
		return
	}

	if !started {
		h.jsonStatus(w, map[string]interface{}{
			"error":   "session has reached its round limit",
			"session": state,
		}, http.StatusConflict)
		return
	}

	h.jsonStatus(w, map[string]interface{}{
		"round":   round,
		"session": state,
	}, http.StatusCreated)
}

func (h *Handler) handleAPIRunSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Topic string `json:"topic"`
	}
	if err := decodeOptional(r, &req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.engine.GetSession(id); err != nil {
		h.engineError(w, err)
		return
	}

	// Run debate in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := h.engine.RunDebate(ctx, id, req.Topic, nil); err != nil {
			slog.Warn("Background debate stopped", "session_id", id, "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleAPIArchiveSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.ArchiveSession(id); err != nil {
		h.engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAPIRotation(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		h.engineError(w, err)
		return
	}

	roundID := state.Counter
	if v := r.URL.Query().Get("round"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.jsonError(w, fmt.Sprintf("invalid round: %q", v), http.StatusBadRequest)
			return
		}
		roundID = n
	}

	assignments := make([]core.Message, 0, core.ParticipantCount)
	for _, p := range core.Participants() {
		assignments = append(assignments, core.Message{Participant: p, Role: core.RoleFor(roundID, p)})
	}

	h.json(w, map[string]interface{}{
		"round":       roundID,
		"summary":     core.RotationSummary(roundID),
		"assignments": assignments,
	})
}

func (h *Handler) handleAPIListArchived(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	summaries, err := h.engine.ListArchived(limit, offset)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []*core.TranscriptSummary{}
	}

	h.json(w, summaries)
}

func (h *Handler) handleAPIGetArchived(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.engine.GetArchived(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if transcript == nil {
		h.jsonError(w, "transcript not found", http.StatusNotFound)
		return
	}
	h.json(w, transcript)
}

func (h *Handler) handleAPIDeleteArchived(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transcript, err := h.engine.GetArchived(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if transcript == nil {
		h.jsonError(w, "transcript not found", http.StatusNotFound)
		return
	}

	if err := h.engine.DeleteArchived(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")

	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transcript, err := h.engine.GetArchived(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if transcript == nil {
		h.jsonError(w, "transcript not found", http.StatusNotFound)
		return
	}

	filename := export.GenerateFilename(transcript, exporter.FileExtension())
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.Export(transcript, w); err != nil {
		slog.Error("Export failed", "id", id, "format", format, "error", err)
	}
}

// Helpers

// decodeOptional decodes a JSON body into v. An empty body leaves v unchanged.
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handler) engineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrSessionNotFound) {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	h.jsonStatus(w, data, http.StatusOK)
}

func (h *Handler) jsonStatus(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
