package schedules

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for schedule storage. Records are
// created or overwritten by the doctor role only, keyed by the
// (doctor, date) pair, and never deleted.
type Repository interface {
	Upsert(ctx context.Context, req *UpsertRequest) (*Schedule, error)
	GetByDoctorDate(ctx context.Context, doctorID, date string) (*Schedule, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Schedule, error)
}

// InMemoryRepository keeps schedules in memory for tests and fallbacks.
type InMemoryRepository struct {
	mu        sync.RWMutex
	schedules map[string]*Schedule // keyed by doctorID + "|" + date
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{schedules: make(map[string]*Schedule)}
}

func key(doctorID, date string) string {
	return doctorID + "|" + date
}

// Upsert creates or overwrites the schedule for (doctor, date).
func (r *InMemoryRepository) Upsert(ctx context.Context, req *UpsertRequest) (*Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(req.DoctorID, req.Date)
	id := uuid.NewString()
	if existing, ok := r.schedules[k]; ok {
		id = existing.ID
	}
	slots := make([]string, len(req.AvailableSlots))
	copy(slots, req.AvailableSlots)
	stored := &Schedule{
		ID:             id,
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		AvailableSlots: slots,
		IsDayOff:       req.IsDayOff,
		UpdatedAt:      time.Now().UTC(),
	}
	r.schedules[k] = stored

	out := *stored
	return &out, nil
}

// GetByDoctorDate returns the explicit record or ErrNoRecord.
func (r *InMemoryRepository) GetByDoctorDate(ctx context.Context, doctorID, date string) (*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sched, ok := r.schedules[key(doctorID, date)]
	if !ok {
		return nil, ErrNoRecord
	}
	out := *sched
	return &out, nil
}

// ListByDoctor returns all explicit records for a doctor, by date.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Schedule
	for _, s := range r.schedules {
		if s.DoctorID != doctorID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
