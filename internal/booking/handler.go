package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/availability"
	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
	"github.com/hsalameh/dental-clinic-platform/internal/observability/metrics"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// Handler exposes the patient-facing booking flow: availability lookup
// and booking submission.
type Handler struct {
	coordinator *Coordinator
	resolver    *availability.Resolver
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(coordinator *Coordinator, resolver *availability.Resolver, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{coordinator: coordinator, resolver: resolver, metrics: m, logger: logger}
}

// AvailabilityResponse lists the bookable slots for (doctor, date).
type AvailabilityResponse struct {
	DoctorID       string   `json:"doctorId"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
}

// GetAvailability handles GET /availability?doctorId=&date=.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctorId")
	date := r.URL.Query().Get("date")

	start := time.Now()
	slots, err := h.resolver.Resolve(r.Context(), doctorID, date)
	h.metrics.ObserveResolveLatency(time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("availability resolve failed", "error", err, "doctor_id", doctorID, "date", date)
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, AvailabilityResponse{
		DoctorID:       doctorID,
		Date:           date,
		AvailableSlots: slots,
	})
}

// BookingResponse wraps the stored appointment; degraded means the
// request is spooled offline and will be replayed.
type BookingResponse struct {
	Appointment *appointments.Appointment `json:"appointment"`
	Degraded    bool                      `json:"degraded,omitempty"`
}

// CreateBooking handles POST /bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req appointments.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "invalid request body", Code: "validation_error"})
		return
	}
	// Patients do not choose a lifecycle state; the clinic assigns it.
	if req.Status != "" {
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "status is assigned by the clinic", Code: "validation_error"})
		return
	}

	result, err := h.coordinator.AttemptBooking(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Degraded {
		status = http.StatusAccepted
	}
	respond.JSON(w, status, BookingResponse{Appointment: result.Appointment, Degraded: result.Degraded})
}

// writeError extends the appointment error mapping with the coordinator's
// degraded-store failure.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		respond.Error(w, http.StatusServiceUnavailable, "store_unavailable", err)
		return
	}
	appointments.WriteError(w, err)
}
