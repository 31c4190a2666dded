package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// Handler exposes doctor schedule management. Patients never write here;
// the upsert is a doctor-role operation.
type Handler struct {
	repo   Repository
	source *Source
	logger *logging.Logger
}

// NewHandler creates a schedules handler. source may be nil, disabling
// the upcoming-window endpoint.
func NewHandler(repo Repository, source *Source, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, source: source, logger: logger}
}

// Upsert handles PUT /doctors/{doctorID}/schedules/{date}: create or
// overwrite the schedule for that calendar date.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "validation_error", errors.New("invalid request body"))
		return
	}
	req.DoctorID = chi.URLParam(r, "doctorID")
	req.Date = chi.URLParam(r, "date")

	sched, err := h.repo.Upsert(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("schedule saved",
		"doctor_id", sched.DoctorID,
		"date", sched.Date,
		"day_off", sched.IsDayOff,
		"slots", len(sched.AvailableSlots),
	)
	respond.JSON(w, http.StatusOK, sched)
}

// ListResponse wraps a doctor's explicit schedule records.
type ListResponse struct {
	Schedules []*Schedule `json:"schedules"`
	Count     int         `json:"count"`
}

// List handles GET /doctors/{doctorID}/schedules.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	scheds, err := h.repo.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list schedules", "error", err, "doctor_id", doctorID)
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Schedules: scheds, Count: len(scheds)})
}

// Upcoming handles GET /doctors/{doctorID}/schedules/upcoming: the
// effective two-week window the schedule editor renders, defaults merged
// in. An optional days query parameter resizes the window.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		respond.Error(w, http.StatusNotFound, "not_found", errors.New("schedule source not configured"))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			respond.Error(w, http.StatusBadRequest, "validation_error", errors.New("days must be between 1 and 90"))
			return
		}
		days = parsed
	}

	window, err := h.source.Upcoming(r.Context(), doctorID, time.Now(), days)
	if err != nil {
		h.logger.Error("failed to resolve upcoming window", "error", err, "doctor_id", doctorID)
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"days": window})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingDoctor), errors.Is(err, ErrInvalidDate):
		respond.Error(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, ErrNoRecord):
		respond.Error(w, http.StatusNotFound, "not_found", err)
	default:
		respond.Error(w, http.StatusInternalServerError, "internal_error", err)
	}
}
