package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Zero values mean "any".
type Filter struct {
	DoctorID     string
	Date         string
	PatientPhone string
	Status       Status
}

// Repository defines the interface for appointment storage.
//
// Create and Update enforce slot exclusivity: at most one non-Cancelled
// appointment per (doctor, date, slot). Implementations return
// ErrSlotTaken on violation; Postgres does so through a partial unique
// index, which is the authoritative guard against booking races.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, appt *Appointment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]*Appointment, error)

	// FindActiveBySlot returns the non-Cancelled appointment occupying
	// (doctorID, date, slot), or nil when the slot is free. excludeID
	// skips the record being edited.
	FindActiveBySlot(ctx context.Context, doctorID, date, slot, excludeID string) (*Appointment, error)

	// MarkReminderSent flips the monotonic reminderSent flag.
	MarkReminderSent(ctx context.Context, id string) error

	// DueReminders lists appointments on the given date that are neither
	// Cancelled nor Completed and have not been reminded yet.
	DueReminders(ctx context.Context, date string) ([]*Appointment, error)

	// FindPatientName returns the most recent patient name recorded for
	// a phone number, or ErrNotFound.
	FindPatientName(ctx context.Context, phone string) (string, error)

	// CountByStatus aggregates a doctor's appointments for dashboards.
	// An empty doctorID counts across all doctors.
	CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error)
}

// InMemoryRepository keeps appointments in memory. It backs tests and the
// degraded offline mode; the mutex makes check-then-insert atomic so slot
// exclusivity holds without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	appts map[string]*Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appts: make(map[string]*Appointment)}
}

func (r *InMemoryRepository) occupant(doctorID, date, slot, excludeID string) *Appointment {
	for _, a := range r.appts {
		if a.ID == excludeID || a.Status == StatusCancelled {
			continue
		}
		if a.DoctorID == doctorID && a.Date == date && a.Slot == slot {
			return a
		}
	}
	return nil
}

// Create inserts a new appointment, assigning an id when absent.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.Status != StatusCancelled {
		if taken := r.occupant(appt.DoctorID, appt.Date, appt.Slot, ""); taken != nil {
			return nil, ErrSlotTaken
		}
	}

	stored := *appt
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.appts[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetByID retrieves an appointment by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *appt
	return &out, nil
}

// Update overwrites an appointment, re-checking slot exclusivity.
func (r *InMemoryRepository) Update(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.appts[appt.ID]
	if !ok {
		return ErrNotFound
	}
	if appt.Status != StatusCancelled {
		if taken := r.occupant(appt.DoctorID, appt.Date, appt.Slot, appt.ID); taken != nil {
			return ErrSlotTaken
		}
	}

	stored := *appt
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	r.appts[appt.ID] = &stored
	return nil
}

// Delete removes an appointment record entirely.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appts[id]; !ok {
		return ErrNotFound
	}
	delete(r.appts, id)
	return nil
}

// List returns appointments matching the filter, newest date first.
func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appts {
		if filter.DoctorID != "" && a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		if filter.PatientPhone != "" && a.PatientPhone != filter.PatientPhone {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindActiveBySlot returns the occupant of a slot, nil when free.
func (r *InMemoryRepository) FindActiveBySlot(ctx context.Context, doctorID, date, slot, excludeID string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if taken := r.occupant(doctorID, date, slot, excludeID); taken != nil {
		out := *taken
		return &out, nil
	}
	return nil, nil
}

// MarkReminderSent flips reminderSent to true.
func (r *InMemoryRepository) MarkReminderSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	appt.ReminderSent = true
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

// DueReminders lists reminder-eligible appointments on a date.
func (r *InMemoryRepository) DueReminders(ctx context.Context, date string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appts {
		if a.Date != date || a.ReminderSent {
			continue
		}
		if a.Status == StatusCancelled || a.Status == StatusCompleted {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindPatientName returns the most recently recorded name for a phone.
func (r *InMemoryRepository) FindPatientName(ctx context.Context, phone string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Appointment
	for _, a := range r.appts {
		if a.PatientPhone != phone {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return "", ErrNotFound
	}
	return latest.PatientName, nil
}

// CountByStatus aggregates appointment counts per status.
func (r *InMemoryRepository) CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Status]int)
	for _, a := range r.appts {
		if doctorID != "" && a.DoctorID != doctorID {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}
