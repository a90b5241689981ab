package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/internal/render"
	"github.com/spektr-org/needsradar/loader"
	"github.com/spektr-org/needsradar/schema"
	"github.com/spektr-org/needsradar/session"
)

// SessionResponse is the state of one session as served to the front end.
type SessionResponse struct {
	ID       string           `json:"id"`
	Created  time.Time        `json:"created"`
	Focus    session.Focus    `json:"focus"`
	Snapshot *engine.Snapshot `json:"snapshot"`
}

// TransitionResponse pairs an interaction outcome with the resulting state.
type TransitionResponse struct {
	Transition session.Transition `json:"transition"`
	Session    SessionResponse    `json:"session"`
}

// SelectRequest is the body of the region selector endpoint. An empty
// region clears the focus.
type SelectRequest struct {
	Region string `json:"region"`
}

type handler struct {
	sessions *session.Manager
	overlay  *loader.Overlay
	scale    engine.OrdinalScale
	describe schema.DescribeOptions
	logger   logging.Logger
}

// sessionResponse reads focus and data from one published snapshot so the
// two always agree.
func sessionResponse(s *session.Session) SessionResponse {
	snap := s.Coordinator.Snapshot()
	return SessionResponse{
		ID:       s.ID,
		Created:  s.Created,
		Focus:    session.FocusOf(snap.Criteria),
		Snapshot: snap,
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"records":  h.sessions.Dataset().Len(),
		"sessions": h.sessions.Len(),
	})
}

func (h *handler) options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.Describe(h.sessions.Dataset(), h.describe))
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(s))
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s))
}

func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// interact runs one coordinator operation and writes the transition.
func (h *handler) interact(w http.ResponseWriter, r *http.Request, op func(*session.Coordinator) (session.Transition, error)) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	t, err := op(s.Coordinator)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TransitionResponse{Transition: t, Session: sessionResponse(s)})
}

func (h *handler) setFilters(w http.ResponseWriter, r *http.Request) {
	var c engine.Criteria
	if err := decodeJSON(r, &c, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.interact(w, r, func(co *session.Coordinator) (session.Transition, error) {
		return co.SetFilters(r.Context(), c)
	})
}

func (h *handler) click(w http.ResponseWriter, r *http.Request) {
	var ev session.ClickEvent
	if err := decodeJSON(r, &ev, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.interact(w, r, func(co *session.Coordinator) (session.Transition, error) {
		return co.HandleClick(r.Context(), ev)
	})
}

func (h *handler) selectRegion(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.interact(w, r, func(co *session.Coordinator) (session.Transition, error) {
		return co.Select(r.Context(), req.Region)
	})
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, func(co *session.Coordinator) (session.Transition, error) {
		return co.Clear(r.Context())
	})
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, func(co *session.Coordinator) (session.Transition, error) {
		return co.Reset(r.Context())
	})
}

// chartPNG serves the session's radar or category chart as an image.
func (h *handler) chartPNG(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	snap := s.Coordinator.Snapshot()

	var chart *engine.ChartConfig
	switch name := chi.URLParam(r, "chart"); name {
	case "radar":
		chart = snap.RadarChart
	case "categories":
		chart = snap.CategoryChart
	default:
		writeAppError(w, h.logger, badRequest("unknown chart %q: want radar or categories", name))
		return
	}

	var buf bytes.Buffer
	if err := render.ChartPNG(&buf, chart); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// workbook serves the session's snapshot as an XLSX download.
func (h *handler) workbook(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := render.WorkbookXLSX(&buf, s.Coordinator.Snapshot()); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="needsradar.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// regions joins the map overlay with the session's current view.
func (h *handler) regions(w http.ResponseWriter, r *http.Request) {
	if h.overlay == nil {
		writeAppError(w, h.logger, errNoOverlay)
		return
	}
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	view := engine.Apply(s.Coordinator.Dataset(), s.Coordinator.Snapshot().Criteria, h.scale)
	writeJSON(w, http.StatusOK, loader.JoinRegions(h.overlay, view))
}
