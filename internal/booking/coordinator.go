package booking

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/observability/metrics"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

var bookingTracer trace.Tracer = otel.Tracer("clinic.internal.booking")

// ErrStoreUnavailable is returned when the appointment store is down and
// the request could not be spooled for later replay either.
var ErrStoreUnavailable = errors.New("appointment store unavailable")

// ScheduleSource answers day-off questions before commit.
type ScheduleSource interface {
	IsDayOff(ctx context.Context, doctorID, date string) (bool, error)
}

// ReferenceChecker validates doctor and procedure ids against the
// external catalog. Implemented by catalog.Client.
type ReferenceChecker interface {
	KnownDoctor(ctx context.Context, id string) (bool, error)
	KnownProcedure(ctx context.Context, id string) (bool, error)
}

// Result is the outcome of a booking attempt. Degraded signals the
// appointment only exists in the offline spool so far; its ID carries a
// local_ prefix until the replay assigns a server id.
type Result struct {
	Appointment *appointments.Appointment `json:"appointment"`
	Degraded    bool                      `json:"degraded"`
}

// Coordinator orchestrates the check-then-create booking sequence. The
// pre-commit conflict check is a fast-fail courtesy; the store's partial
// unique index is what actually arbitrates races.
type Coordinator struct {
	repo      appointments.Repository
	schedules ScheduleSource
	phones    appointments.PhoneRule
	refs      ReferenceChecker
	queue     *Queue
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewCoordinator constructs a booking coordinator. refs, queue and
// metrics may be nil; without a queue, persistence failures are surfaced
// directly.
func NewCoordinator(repo appointments.Repository, schedules ScheduleSource, phones appointments.PhoneRule, refs ReferenceChecker, queue *Queue, m *metrics.BookingMetrics, logger *logging.Logger) *Coordinator {
	if repo == nil {
		panic("booking: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		repo:      repo,
		schedules: schedules,
		phones:    phones,
		refs:      refs,
		queue:     queue,
		metrics:   m,
		logger:    logger,
	}
}

// AttemptBooking validates the request, re-checks the slot against the
// current store state, and commits a Confirmed appointment. When the
// store is unreachable the request is spooled to the offline queue and
// the result is flagged degraded rather than losing the patient's input.
func (c *Coordinator) AttemptBooking(ctx context.Context, req *appointments.CreateRequest) (Result, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.attempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.doctor_id", req.DoctorID),
		attribute.String("clinic.date", req.Date),
	)

	if err := req.Validate(c.phones); err != nil {
		c.metrics.ObserveAttempt("invalid")
		return Result{}, err
	}
	// New bookings enter the lifecycle at Pending or Confirmed only;
	// terminal states are reached through status transitions.
	if req.Status != "" && req.Status != appointments.StatusPending && req.Status != appointments.StatusConfirmed {
		c.metrics.ObserveAttempt("invalid")
		return Result{}, appointments.ErrInvalidStatus
	}

	if err := c.checkReferences(ctx, req); err != nil {
		c.metrics.ObserveAttempt("invalid")
		return Result{}, err
	}

	if c.schedules != nil {
		dayOff, err := c.schedules.IsDayOff(ctx, req.DoctorID, req.Date)
		if err != nil {
			// Schedule store trouble must not block booking; the slot
			// index still guards correctness.
			c.logger.Warn("booking: day-off check unavailable", "error", err, "doctor_id", req.DoctorID)
		} else if dayOff {
			c.metrics.ObserveAttempt("day_closed")
			return Result{}, appointments.ErrDayClosed
		}
	}

	appt := &appointments.Appointment{
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		DoctorID:     req.DoctorID,
		Date:         req.Date,
		Slot:         req.Slot,
		ProcedureID:  req.ProcedureID,
		Notes:        req.Notes,
		Status:       appointments.StatusConfirmed,
	}
	if req.Status != "" {
		appt.Status = req.Status
	}

	// Fast-fail re-check: the client's availability snapshot may be
	// stale by the time it submits.
	occupant, err := c.repo.FindActiveBySlot(ctx, req.DoctorID, req.Date, req.Slot, "")
	if err != nil {
		span.RecordError(err)
		return c.degrade(ctx, req, err)
	}
	if occupant != nil {
		c.metrics.ObserveAttempt("conflict")
		c.metrics.ObserveConflict()
		return Result{}, appointments.ErrSlotTaken
	}

	stored, err := c.repo.Create(ctx, appt)
	if err != nil {
		if errors.Is(err, appointments.ErrSlotTaken) {
			c.metrics.ObserveAttempt("conflict")
			c.metrics.ObserveConflict()
			return Result{}, appointments.ErrSlotTaken
		}
		span.RecordError(err)
		return c.degrade(ctx, req, err)
	}

	c.metrics.ObserveAttempt("confirmed")
	c.logger.Info("booking confirmed",
		"id", stored.ID,
		"doctor_id", stored.DoctorID,
		"date", stored.Date,
		"slot", stored.Slot,
	)
	return Result{Appointment: stored}, nil
}

// checkReferences rejects ids the catalog disowns. When the catalog is
// unconfigured or unreachable the booking proceeds; the slot index is
// the correctness guard, the catalog is advisory.
func (c *Coordinator) checkReferences(ctx context.Context, req *appointments.CreateRequest) error {
	if c.refs == nil {
		return nil
	}
	if known, err := c.refs.KnownDoctor(ctx, req.DoctorID); err != nil {
		c.logger.Warn("booking: doctor reference check unavailable", "error", err, "doctor_id", req.DoctorID)
	} else if !known {
		return appointments.ErrUnknownDoctor
	}
	if known, err := c.refs.KnownProcedure(ctx, req.ProcedureID); err != nil {
		c.logger.Warn("booking: procedure reference check unavailable", "error", err, "procedure_id", req.ProcedureID)
	} else if !known {
		return appointments.ErrUnknownProcedure
	}
	return nil
}

// degrade spools the request when the store is unreachable so the
// patient's input survives the outage.
func (c *Coordinator) degrade(ctx context.Context, req *appointments.CreateRequest, cause error) (Result, error) {
	if c.queue == nil {
		c.metrics.ObserveAttempt("failed")
		return Result{}, fmt.Errorf("booking: store write failed: %w", cause)
	}
	local, err := c.queue.Enqueue(ctx, req)
	if err != nil {
		c.metrics.ObserveAttempt("failed")
		c.logger.Error("booking: offline spool failed", "error", err, "cause", cause)
		return Result{}, fmt.Errorf("%w: %s", ErrStoreUnavailable, cause)
	}
	c.metrics.ObserveAttempt("degraded")
	c.metrics.ObserveSpooled()
	c.logger.Warn("booking spooled offline", "local_id", local.ID, "cause", cause)
	return Result{Appointment: local, Degraded: true}, nil
}
