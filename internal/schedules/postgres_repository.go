package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores schedules in the relational database with a
// unique (doctor_id, date) key driving the upsert.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("schedules: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Upsert creates or overwrites the schedule for (doctor, date).
func (r *PostgresRepository) Upsert(ctx context.Context, req *UpsertRequest) (*Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO schedules (id, doctor_id, date, available_slots, is_day_off)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, date)
		DO UPDATE SET available_slots = EXCLUDED.available_slots,
			is_day_off = EXCLUDED.is_day_off,
			updated_at = now()
		RETURNING id, updated_at
	`
	stored := &Schedule{
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		AvailableSlots: append([]string(nil), req.AvailableSlots...),
		IsDayOff:       req.IsDayOff,
	}
	if err := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		req.DoctorID,
		req.Date,
		req.AvailableSlots,
		req.IsDayOff,
	).Scan(&stored.ID, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("schedules: upsert: %w", err)
	}
	return stored, nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	var date time.Time
	if err := row.Scan(&s.ID, &s.DoctorID, &date, &s.AvailableSlots, &s.IsDayOff, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Format(DateLayout)
	return &s, nil
}

// GetByDoctorDate returns the explicit record or ErrNoRecord.
func (r *PostgresRepository) GetByDoctorDate(ctx context.Context, doctorID, date string) (*Schedule, error) {
	query := `
		SELECT id, doctor_id, date, available_slots, is_day_off, updated_at
		FROM schedules
		WHERE doctor_id = $1 AND date = $2
	`
	sched, err := scanSchedule(r.pool.QueryRow(ctx, query, doctorID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("schedules: select: %w", err)
	}
	return sched, nil
}

// ListByDoctor returns all explicit records for a doctor, by date.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Schedule, error) {
	query := `
		SELECT id, doctor_id, date, available_slots, is_day_off, updated_at
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("schedules: list: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("schedules: scan: %w", err)
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}
