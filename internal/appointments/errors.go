package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment id does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when a non-cancelled appointment already
	// occupies the requested (doctor, date, slot).
	ErrSlotTaken = errors.New("slot already booked")

	// ErrDayClosed is returned when the requested date is a day off for
	// the doctor.
	ErrDayClosed = errors.New("doctor is not available on this date")

	// ErrInvalidTransition is returned for a status change the lifecycle
	// state machine does not permit.
	ErrInvalidTransition = errors.New("status transition not permitted")

	// Validation errors, surfaced before any I/O.
	ErrMissingPatientName = errors.New("patient name is required")
	ErrInvalidPhone       = errors.New("patient phone must be a valid local mobile number")
	ErrMissingDoctor      = errors.New("doctor is required")
	ErrInvalidDate        = errors.New("date must be a calendar date (YYYY-MM-DD)")
	ErrMissingSlot        = errors.New("time slot is required")
	ErrMissingProcedure   = errors.New("procedure is required")
	ErrOtherNeedsNotes    = errors.New("notes are required when procedure is \"other\"")
	ErrInvalidStatus      = errors.New("unknown appointment status")

	// Reference errors, raised when the catalog disowns an id.
	ErrUnknownDoctor    = errors.New("doctor is not in the catalog")
	ErrUnknownProcedure = errors.New("procedure is not in the catalog")
)
