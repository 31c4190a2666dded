package appointments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// Handler exposes appointment listing and lifecycle operations.
type Handler struct {
	repo      Repository
	lifecycle *Lifecycle
	logger    *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(repo Repository, lifecycle *Lifecycle, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, lifecycle: lifecycle, logger: logger}
}

// ListResponse wraps an appointment listing.
type ListResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
}

// List handles GET /appointments with optional doctorId, date,
// patientPhone and status filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		DoctorID:     q.Get("doctorId"),
		Date:         q.Get("date"),
		PatientPhone: q.Get("patientPhone"),
		Status:       Status(q.Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		WriteError(w, ErrInvalidStatus)
		return
	}

	appts, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Appointments: appts, Count: len(appts)})
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

type statusRequest struct {
	Status Status `json:"status"`
}

// SetStatus handles POST /appointments/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "invalid request body", Code: "validation_error"})
		return
	}
	appt, err := h.lifecycle.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

// Edit handles PATCH /appointments/{id}.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var patch EditRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "invalid request body", Code: "validation_error"})
		return
	}
	appt, err := h.lifecycle.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /appointments/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.Body != nil {
		// Reason is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	appt, err := h.lifecycle.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

// Delete handles DELETE /appointments/{id}. Doctor-only, irreversible.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatsResponse aggregates a doctor's appointment counts.
type StatsResponse struct {
	DoctorID string         `json:"doctorId,omitempty"`
	Counts   map[Status]int `json:"counts"`
	Total    int            `json:"total"`
}

// Stats handles GET /doctors/{doctorID}/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	counts, err := h.repo.CountByStatus(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to count appointments", "error", err, "doctor_id", doctorID)
		WriteError(w, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	respond.JSON(w, http.StatusOK, StatsResponse{DoctorID: doctorID, Counts: counts, Total: total})
}

// PatientResponse is the phone-lookup result.
type PatientResponse struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// FindPatient handles GET /patients?phone=. Returns the last known name
// for a phone number so returning patients skip re-typing it.
func (h *Handler) FindPatient(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "phone is required", Code: "validation_error"})
		return
	}
	name, err := h.repo.FindPatientName(r.Context(), phone)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, PatientResponse{Phone: phone, Name: name})
}
