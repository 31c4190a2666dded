package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// ScheduleSource answers day-off questions for reschedule validation.
// Implemented by the schedules fallback chain.
type ScheduleSource interface {
	IsDayOff(ctx context.Context, doctorID, date string) (bool, error)
}

// Lifecycle governs legal mutations of existing appointments: status
// transitions, edits, cancellation, and the doctor-only hard delete.
type Lifecycle struct {
	repo      Repository
	schedules ScheduleSource
	logger    *logging.Logger
	now       func() time.Time
}

// NewLifecycle constructs a lifecycle manager.
func NewLifecycle(repo Repository, schedules ScheduleSource, logger *logging.Logger) *Lifecycle {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Lifecycle{repo: repo, schedules: schedules, logger: logger, now: time.Now}
}

// SetStatus moves an appointment through the state machine:
// Pending -> Confirmed | Cancelled, Confirmed -> Completed | Cancelled.
// Completed and Cancelled are terminal.
func (l *Lifecycle) SetStatus(ctx context.Context, id string, next Status) (*Appointment, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}
	appt, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}
	appt.Status = next
	if err := l.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	l.logger.Info("appointment status changed", "id", id, "status", next)
	return appt, nil
}

// Cancel sets the status to Cancelled and appends a timestamped audit
// line to the notes. The record is kept; cancellation never deletes.
func (l *Lifecycle) Cancel(ctx context.Context, id, reason string) (*Appointment, error) {
	appt, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransition(StatusCancelled) {
		return nil, ErrInvalidTransition
	}
	appt.Status = StatusCancelled
	appt.Notes = AppendCancelNote(appt.Notes, l.now(), reason)
	if err := l.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	l.logger.Info("appointment cancelled", "id", id)
	return appt, nil
}

// EditRequest patches an existing appointment. Nil pointers leave a field
// unchanged. ChangeReason, when present, is appended to the notes as an
// audit entry.
type EditRequest struct {
	PatientName  *string `json:"patientName,omitempty"`
	PatientPhone *string `json:"patientPhone,omitempty"`
	Date         *string `json:"date,omitempty"`
	Slot         *string `json:"time,omitempty"`
	ProcedureID  *string `json:"procedureId,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       *Status `json:"status,omitempty"`
	ChangeReason string  `json:"changeReason,omitempty"`
}

// Edit applies a patch. Moving the appointment to another (date, slot)
// re-validates against the doctor's schedule and the occupancy of the
// target slot, excluding the record being edited. Terminal appointments
// accept note edits only.
func (l *Lifecycle) Edit(ctx context.Context, id string, patch EditRequest) (*Appointment, error) {
	appt, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rescheduled := false
	if patch.Date != nil && *patch.Date != appt.Date {
		if _, err := time.Parse(DateLayout, *patch.Date); err != nil {
			return nil, ErrInvalidDate
		}
		appt.Date = *patch.Date
		rescheduled = true
	}
	if patch.Slot != nil && *patch.Slot != appt.Slot {
		if strings.TrimSpace(*patch.Slot) == "" {
			return nil, ErrMissingSlot
		}
		appt.Slot = *patch.Slot
		rescheduled = true
	}
	if rescheduled && appt.Status.Terminal() {
		return nil, ErrInvalidTransition
	}

	if patch.PatientName != nil {
		if strings.TrimSpace(*patch.PatientName) == "" {
			return nil, ErrMissingPatientName
		}
		appt.PatientName = *patch.PatientName
	}
	if patch.PatientPhone != nil {
		appt.PatientPhone = *patch.PatientPhone
	}
	if patch.ProcedureID != nil {
		appt.ProcedureID = *patch.ProcedureID
	}
	if patch.Notes != nil {
		appt.Notes = *patch.Notes
	}
	if patch.Status != nil && *patch.Status != appt.Status {
		if !appt.Status.CanTransition(*patch.Status) {
			return nil, ErrInvalidTransition
		}
		appt.Status = *patch.Status
	}

	// Rejected synchronously, before any persistence attempt.
	if rescheduled && appt.Status != StatusCancelled {
		if l.schedules != nil {
			dayOff, err := l.schedules.IsDayOff(ctx, appt.DoctorID, appt.Date)
			if err != nil {
				return nil, err
			}
			if dayOff {
				return nil, ErrDayClosed
			}
		}
		occupant, err := l.repo.FindActiveBySlot(ctx, appt.DoctorID, appt.Date, appt.Slot, appt.ID)
		if err != nil {
			return nil, err
		}
		if occupant != nil {
			return nil, ErrSlotTaken
		}
	}

	if strings.TrimSpace(patch.ChangeReason) != "" {
		appt.Notes = AppendEditNote(appt.Notes, l.now(), patch.ChangeReason)
	}

	if err := l.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	l.logger.Info("appointment edited", "id", id, "rescheduled", rescheduled)
	return appt, nil
}

// Delete irreversibly removes a record. Doctor-only, intended for
// erroneous entries rather than patient-initiated cancellation.
func (l *Lifecycle) Delete(ctx context.Context, id string) error {
	if err := l.repo.Delete(ctx, id); err != nil {
		return err
	}
	l.logger.Info("appointment deleted", "id", id)
	return nil
}

// MarkReminderSent records that the notification collaborator reminded
// the patient. The flag only ever moves false -> true.
func (l *Lifecycle) MarkReminderSent(ctx context.Context, id string) error {
	return l.repo.MarkReminderSent(ctx, id)
}
