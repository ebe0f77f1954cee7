// Package httpapi implements the REST transport of the tracker service.
//
// Every route except /health resolves the caller through an auth.Resolver;
// records are always scoped to that caller.
//
// Routes:
//
//	GET    /jobs             → list the caller's applications
//	POST   /jobs             → create an application
//	GET    /jobs/{id}        → fetch one application
//	PATCH  /jobs/{id}        → partial update
//	DELETE /jobs/{id}        → hard delete
//	GET    /views/table      → filtered table (?status=&priority=&q=)
//	GET    /views/board      → kanban columns with deadline badges
//	GET    /views/stats      → dashboard aggregates
//	GET    /views/upcoming   → deadlines inside their reminder window
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"jobtracker/tracker-service/internal/auth"
	"jobtracker/tracker-service/internal/deadline"
	"jobtracker/tracker-service/internal/tracker"
	"jobtracker/tracker-service/internal/views"
)

const maxBodyBytes = 1 << 20

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	svc  *tracker.Service
	auth auth.Resolver
}

// NewHandler returns a configured Handler.
func NewHandler(svc *tracker.Service, res auth.Resolver) *Handler {
	return &Handler{svc: svc, auth: res}
}

// RegisterRoutes mounts all tracker routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /jobs", h.listJobs)
	mux.HandleFunc("POST /jobs", h.createJob)
	mux.HandleFunc("GET /jobs/{id}", h.getJob)
	mux.HandleFunc("PATCH /jobs/{id}", h.updateJob)
	mux.HandleFunc("DELETE /jobs/{id}", h.deleteJob)

	mux.HandleFunc("GET /views/table", h.tableView)
	mux.HandleFunc("GET /views/board", h.boardView)
	mux.HandleFunc("GET /views/stats", h.statsView)
	mux.HandleFunc("GET /views/upcoming", h.upcomingView)
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in tracker.CreateInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	app, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonWrite(w, http.StatusCreated, app)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	app, err := h.svc.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in tracker.UpdateInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	app, err := h.svc.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]bool{"ok": true})
}

// ─── Views ───────────────────────────────────────────────────────────────────

type tableResponse struct {
	Jobs   []tracker.Application `json:"jobs"`
	Counts []views.StatusCount   `json:"counts"`
}

func (h *Handler) tableView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := views.Filter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("q"),
	}
	jsonOK(w, tableResponse{
		Jobs:   views.Table(apps, filter),
		Counts: views.StatusCounts(apps),
	})
}

func (h *Handler) boardView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.ListForBoard(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, views.NewBoard(apps, h.svc.Now()))
}

func (h *Handler) statsView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.ListForStats(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, views.BuildStats(apps, h.svc.Now()))
}

func (h *Handler) upcomingView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, deadline.Upcoming(apps, h.svc.Now()))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// caller resolves the user id or writes the error response.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.UserID(h.auth, r)
	if err != nil {
		h.fail(w, r, err)
		return "", false
	}
	return userID, true
}

// fail maps service errors to status codes. Unexpected errors are logged and
// answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *tracker.ValidationError
	switch {
	case errors.Is(err, tracker.ErrUnauthenticated):
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, tracker.ErrNotFound):
		jsonError(w, "Job not found", http.StatusNotFound)
	default:
		log.WithFields(log.Fields{
			"component": "httpapi",
			"method":    r.Method,
			"path":      r.URL.Path,
		}).WithError(err).Error("request failed")
		jsonError(w, "Server error", http.StatusInternalServerError)
	}
}

// decodeBody reads a JSON body into v. A malformed body is a server error,
// not a validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonWrite(w, http.StatusOK, v)
}

func jsonWrite(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonWrite(w, code, map[string]string{"error": msg})
}
