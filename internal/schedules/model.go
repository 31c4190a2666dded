package schedules

import (
	"strings"
	"time"
)

// Schedule is a doctor's explicit working-hours override for one calendar
// date. Absence of a record means the system defaults apply.
type Schedule struct {
	ID             string    `json:"id"`
	DoctorID       string    `json:"doctorId"`
	Date           string    `json:"date"`
	AvailableSlots []string  `json:"availableSlots"`
	IsDayOff       bool      `json:"isDayOff"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DateLayout is the calendar-date wire format shared with appointments.
const DateLayout = time.DateOnly

// UpsertRequest creates or overwrites the schedule for (doctor, date).
type UpsertRequest struct {
	DoctorID       string   `json:"doctorId"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	IsDayOff       bool     `json:"isDayOff"`
}

// Validate checks the upsert shape.
func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
