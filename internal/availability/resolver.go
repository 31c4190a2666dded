// Package availability computes the bookable slot set for a doctor and
// date by combining the schedule fallback chain with the taken slots in
// the appointment store.
package availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/schedules"
)

// ScheduleSource answers effective-day questions. Implemented by
// schedules.Source.
type ScheduleSource interface {
	EffectiveDay(ctx context.Context, doctorID, date string) (schedules.Day, error)
}

// AppointmentSource lists appointments for the taken-slot computation.
// Implemented by appointments.Repository.
type AppointmentSource interface {
	List(ctx context.Context, filter appointments.Filter) ([]*appointments.Appointment, error)
}

// Resolver combines schedule and appointment state into the ordered
// bookable slot list. It performs no writes; calling it twice with no
// intervening mutation yields identical output.
type Resolver struct {
	schedules ScheduleSource
	appts     AppointmentSource
}

// NewResolver constructs a resolver over the two stores.
func NewResolver(scheduleSource ScheduleSource, apptSource AppointmentSource) *Resolver {
	if scheduleSource == nil || apptSource == nil {
		panic("availability: schedule and appointment sources required")
	}
	return &Resolver{schedules: scheduleSource, appts: apptSource}
}

// Resolve returns the bookable slot labels for (doctor, date) in base
// order. A day off yields an empty list regardless of any stored slots.
// Slot labels are opaque and compared by exact string equality; no
// normalization is applied.
func (r *Resolver) Resolve(ctx context.Context, doctorID, date string) ([]string, error) {
	if strings.TrimSpace(doctorID) == "" || strings.TrimSpace(date) == "" {
		return []string{}, nil
	}

	day, err := r.schedules.EffectiveDay(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("availability: effective day: %w", err)
	}
	if day.IsDayOff {
		return []string{}, nil
	}

	listed, err := r.appts.List(ctx, appointments.Filter{DoctorID: doctorID, Date: date})
	if err != nil {
		return nil, fmt.Errorf("availability: list appointments: %w", err)
	}
	taken := make(map[string]struct{}, len(listed))
	for _, appt := range listed {
		if appt.Status == appointments.StatusCancelled {
			continue
		}
		taken[appt.Slot] = struct{}{}
	}

	open := make([]string, 0, len(day.Slots))
	for _, slot := range day.Slots {
		if _, ok := taken[slot]; ok {
			continue
		}
		open = append(open, slot)
	}
	return open, nil
}
