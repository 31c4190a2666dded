package schedules

import "errors"

var (
	// ErrNoRecord is returned when no explicit schedule exists for a
	// (doctor, date) pair; callers fall through to the defaults.
	ErrNoRecord = errors.New("no schedule record for this doctor and date")

	// ErrMissingDoctor is returned when the doctor reference is absent.
	ErrMissingDoctor = errors.New("doctor is required")

	// ErrInvalidDate is returned for a malformed calendar date.
	ErrInvalidDate = errors.New("date must be a calendar date (YYYY-MM-DD)")
)
