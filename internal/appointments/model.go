package appointments

import (
	"strings"
	"time"
)

// Status tracks an appointment through its lifecycle.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal states admit no further status transitions. Notes may still be
// edited for record-keeping.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the state machine permits moving to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// OtherProcedureID is the sentinel procedure reference meaning
// "other/unspecified"; it requires explanatory notes.
const OtherProcedureID = "other"

// DateLayout is the calendar-date wire format. Appointments carry a pure
// date; the slot label is a separate opaque string.
const DateLayout = time.DateOnly

// Appointment is a booking record. Dates are calendar dates (no time of
// day); Slot is an opaque label compared by exact string equality.
type Appointment struct {
	ID           string    `json:"id"`
	PatientName  string    `json:"patientName"`
	PatientPhone string    `json:"patientPhone,omitempty"`
	DoctorID     string    `json:"doctorId"`
	Date         string    `json:"date"`
	Slot         string    `json:"time"`
	ProcedureID  string    `json:"procedureId"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	ReminderSent bool      `json:"reminderSent"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PhoneRule validates local mobile numbers: 10 digits, a leading zero and
// then one of the configured two-digit prefixes.
type PhoneRule struct {
	Prefixes []string
}

// Valid reports whether phone matches the local mobile pattern.
func (p PhoneRule) Valid(phone string) bool {
	if len(phone) != 10 || phone[0] != '0' {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(phone[1:], prefix) {
			return true
		}
	}
	return false
}

// CreateRequest is the patient booking submission.
type CreateRequest struct {
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone"`
	DoctorID     string `json:"doctorId"`
	Date         string `json:"date"`
	Slot         string `json:"time"`
	ProcedureID  string `json:"procedureId"`
	Notes        string `json:"notes"`
	Status       Status `json:"status,omitempty"`
}

// Validate checks request shape before any I/O happens.
func (r *CreateRequest) Validate(phones PhoneRule) error {
	if strings.TrimSpace(r.PatientName) == "" {
		return ErrMissingPatientName
	}
	if !phones.Valid(r.PatientPhone) {
		return ErrInvalidPhone
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.Slot) == "" {
		return ErrMissingSlot
	}
	if strings.TrimSpace(r.ProcedureID) == "" {
		return ErrMissingProcedure
	}
	if r.ProcedureID == OtherProcedureID && strings.TrimSpace(r.Notes) == "" {
		return ErrOtherNeedsNotes
	}
	if r.Status != "" && !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Weekday returns the day of week for a calendar date string.
func Weekday(date string) (time.Weekday, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return d.Weekday(), nil
}
