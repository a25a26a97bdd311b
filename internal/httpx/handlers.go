package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/brightwater-dev/leadboard/internal/crm"
	"github.com/brightwater-dev/leadboard/internal/dashboard"
	"github.com/brightwater-dev/leadboard/internal/logging"
	"github.com/brightwater-dev/leadboard/internal/models"
	"github.com/brightwater-dev/leadboard/internal/progress"
)

type handlers struct {
	svc     *dashboard.Service
	presets *dashboard.PresetStore
	log     zerolog.Logger
}

func newHandlers(svc *dashboard.Service, presets *dashboard.PresetStore) *handlers {
	return &handlers{svc: svc, presets: presets, log: logging.With("http")}
}

// getDashboard serves the full aggregate payload as one JSON document.
func (h *handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := h.svc.Build(r.Context(), q, progress.Discard)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard build failed")
		writeError(w, crm.StatusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// streamDashboard serves the same build as a server-sent event stream:
// progress events while the pass runs, then exactly one complete event with
// the payload or one error event. The build keeps running on a detached
// context if the consumer drops, so the cache write still lands.
func (h *handlers) streamDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, ok := progress.NewSSEWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if _, err := h.svc.Build(ctx, q, sse); err != nil {
		h.log.Error().Err(err).Msg("dashboard build failed")
		sse.Send(progress.Event{Stage: progress.StageError, Message: err.Error()})
	}
}

func (h *handlers) listPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.List())
}

func (h *handlers) savePreset(w http.ResponseWriter, r *http.Request) {
	var preset models.FilterPreset
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(preset.Name) == "" {
		writeError(w, http.StatusBadRequest, "preset name is required")
		return
	}
	writeJSON(w, http.StatusCreated, h.presets.Save(preset))
}

func (h *handlers) deletePreset(w http.ResponseWriter, r *http.Request) {
	if !h.presets.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
