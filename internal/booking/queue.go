package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/observability/metrics"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

const offlineQueueKey = "booking:offline"

// spooledRequest is the serialized form waiting in the offline queue.
type spooledRequest struct {
	LocalID   string                      `json:"localId"`
	Request   *appointments.CreateRequest `json:"request"`
	SpooledAt time.Time                   `json:"spooledAt"`
}

// Queue spools booking requests in Redis while the appointment store is
// unreachable, so no patient input is lost during an outage.
type Queue struct {
	client *redis.Client
}

// NewQueue creates an offline booking queue.
func NewQueue(client *redis.Client) *Queue {
	if client == nil {
		return nil
	}
	return &Queue{client: client}
}

// Enqueue spools a validated request and returns the speculative local
// appointment the caller can show while degraded.
func (q *Queue) Enqueue(ctx context.Context, req *appointments.CreateRequest) (*appointments.Appointment, error) {
	entry := spooledRequest{
		LocalID:   "local_" + uuid.NewString(),
		Request:   req,
		SpooledAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("booking: marshal spooled request: %w", err)
	}
	if err := q.client.RPush(ctx, offlineQueueKey, data).Err(); err != nil {
		return nil, fmt.Errorf("booking: spool request: %w", err)
	}

	status := appointments.StatusConfirmed
	if req.Status != "" {
		status = req.Status
	}
	return &appointments.Appointment{
		ID:           entry.LocalID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		DoctorID:     req.DoctorID,
		Date:         req.Date,
		Slot:         req.Slot,
		ProcedureID:  req.ProcedureID,
		Notes:        req.Notes,
		Status:       status,
		CreatedAt:    entry.SpooledAt,
		UpdatedAt:    entry.SpooledAt,
	}, nil
}

// Len reports how many requests are waiting.
func (q *Queue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, offlineQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("booking: queue length: %w", err)
	}
	return int(n), nil
}

// pop removes and returns the oldest spooled request, or nil when empty.
func (q *Queue) pop(ctx context.Context) (*spooledRequest, error) {
	data, err := q.client.LPop(ctx, offlineQueueKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("booking: pop spooled request: %w", err)
	}
	var entry spooledRequest
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("booking: decode spooled request: %w", err)
	}
	return &entry, nil
}

// requeue puts a request back at the head after a failed replay.
func (q *Queue) requeue(ctx context.Context, entry *spooledRequest) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("booking: marshal spooled request: %w", err)
	}
	if err := q.client.LPush(ctx, offlineQueueKey, data).Err(); err != nil {
		return fmt.Errorf("booking: requeue request: %w", err)
	}
	return nil
}

// Flusher replays spooled requests into the appointment store once it is
// reachable again.
type Flusher struct {
	queue    *Queue
	repo     appointments.Repository
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	interval time.Duration
}

// NewFlusher creates a flusher polling at the given interval.
func NewFlusher(queue *Queue, repo appointments.Repository, m *metrics.BookingMetrics, logger *logging.Logger, interval time.Duration) *Flusher {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Flusher{queue: queue, repo: repo, metrics: m, logger: logger, interval: interval}
}

// Run polls until the context is cancelled.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.FlushOnce(ctx); err != nil {
				f.logger.Warn("offline flush failed", "error", err)
			}
		}
	}
}

// FlushOnce drains the queue, returning how many requests were replayed
// into the store. A request whose slot was taken in the meantime is
// dropped with a warning; there is nothing left to book. On a store
// error the request goes back to the head and flushing stops until the
// next tick.
func (f *Flusher) FlushOnce(ctx context.Context) (int, error) {
	if f.queue == nil {
		return 0, nil
	}
	replayed := 0
	for {
		entry, err := f.queue.pop(ctx)
		if err != nil {
			return replayed, err
		}
		if entry == nil {
			break
		}

		status := appointments.StatusConfirmed
		if entry.Request.Status != "" {
			status = entry.Request.Status
		}
		appt := &appointments.Appointment{
			PatientName:  entry.Request.PatientName,
			PatientPhone: entry.Request.PatientPhone,
			DoctorID:     entry.Request.DoctorID,
			Date:         entry.Request.Date,
			Slot:         entry.Request.Slot,
			ProcedureID:  entry.Request.ProcedureID,
			Notes:        entry.Request.Notes,
			Status:       status,
		}

		stored, err := f.repo.Create(ctx, appt)
		if err != nil {
			if errors.Is(err, appointments.ErrSlotTaken) {
				f.logger.Warn("spooled booking lost its slot",
					"local_id", entry.LocalID,
					"doctor_id", entry.Request.DoctorID,
					"date", entry.Request.Date,
					"slot", entry.Request.Slot,
				)
				continue
			}
			if requeueErr := f.queue.requeue(ctx, entry); requeueErr != nil {
				f.logger.Error("requeue after failed replay", "error", requeueErr)
			}
			return replayed, err
		}

		replayed++
		f.logger.Info("spooled booking replayed", "local_id", entry.LocalID, "id", stored.ID)
	}

	if depth, err := f.queue.Len(ctx); err == nil {
		f.metrics.SetOfflineDepth(depth)
	}
	return replayed, nil
}
