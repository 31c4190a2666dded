package appointments

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

// PostgresRepository stores appointments in the relational database. A
// partial unique index on (doctor_id, date, time) excluding Cancelled
// rows is the authoritative double-booking guard.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// validID reports whether id can address the uuid primary key. A
// malformed id is simply an absent row, not a query error.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// isSlotConflict detects violations of the active-slot unique index.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const appointmentColumns = `id, patient_name, patient_phone, doctor_id, date, time, procedure_id, notes, status, reminder_sent, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	if err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.PatientPhone,
		&a.DoctorID,
		&date,
		&a.Slot,
		&a.ProcedureID,
		&a.Notes,
		&a.Status,
		&a.ReminderSent,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Date = date.Format(DateLayout)
	return &a, nil
}

// Create inserts a new row, returning ErrSlotTaken when the slot index
// rejects it.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := appt.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
		INSERT INTO appointments (id, patient_name, patient_phone, doctor_id, date, time, procedure_id, notes, status, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	stored := *appt
	stored.ID = id
	if err := r.pool.QueryRow(ctx, query,
		id,
		appt.PatientName,
		appt.PatientPhone,
		appt.DoctorID,
		appt.Date,
		appt.Slot,
		appt.ProcedureID,
		appt.Notes,
		appt.Status,
		appt.ReminderSent,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	return appt, nil
}

// Update overwrites a row; the slot index re-checks exclusivity.
func (r *PostgresRepository) Update(ctx context.Context, appt *Appointment) error {
	if !validID(appt.ID) {
		return ErrNotFound
	}
	query := `
		UPDATE appointments
		SET patient_name = $2, patient_phone = $3, doctor_id = $4, date = $5, time = $6,
			procedure_id = $7, notes = $8, status = $9, updated_at = now()
		WHERE id = $1
	`
	ct, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.PatientName,
		appt.PatientPhone,
		appt.DoctorID,
		appt.Date,
		appt.Slot,
		appt.ProcedureID,
		appt.Notes,
		appt.Status,
	)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a row entirely. Distinct from cancellation, which keeps
// the record with a Cancelled status.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns appointments matching the filter, newest date first.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.DoctorID != "" {
		query += ` AND doctor_id = ` + arg(filter.DoctorID)
	}
	if filter.Date != "" {
		query += ` AND date = ` + arg(filter.Date)
	}
	if filter.PatientPhone != "" {
		query += ` AND patient_phone = ` + arg(filter.PatientPhone)
	}
	if filter.Status != "" {
		query += ` AND status = ` + arg(filter.Status)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// FindActiveBySlot returns the non-Cancelled occupant of a slot, or nil.
// The exclude clause is only added for a real id; the id column is a
// uuid and would reject an empty string.
func (r *PostgresRepository) FindActiveBySlot(ctx context.Context, doctorID, date, slot, excludeID string) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND time = $3 AND status <> $4
	`
	args := []any{doctorID, date, slot, StatusCancelled}
	if excludeID != "" {
		query += ` AND id <> $5`
		args = append(args, excludeID)
	}
	query += ` LIMIT 1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("appointments: slot lookup: %w", err)
	}
	return appt, nil
}

// MarkReminderSent flips reminder_sent; the flag never goes back to false.
func (r *PostgresRepository) MarkReminderSent(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `UPDATE appointments SET reminder_sent = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: mark reminder: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DueReminders lists reminder-eligible appointments on a date.
func (r *PostgresRepository) DueReminders(ctx context.Context, date string) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE date = $1 AND reminder_sent = FALSE AND status NOT IN ($2, $3)
		ORDER BY time
	`
	rows, err := r.pool.Query(ctx, query, date, StatusCancelled, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("appointments: due reminders: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// FindPatientName returns the most recent name recorded for a phone.
func (r *PostgresRepository) FindPatientName(ctx context.Context, phone string) (string, error) {
	query := `
		SELECT patient_name FROM appointments
		WHERE patient_phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var name string
	if err := r.pool.QueryRow(ctx, query, phone).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("appointments: patient lookup: %w", err)
	}
	return name, nil
}

// CountByStatus aggregates appointment counts per status.
func (r *PostgresRepository) CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error) {
	query := `SELECT status, COUNT(*) FROM appointments`
	var args []any
	if doctorID != "" {
		query += ` WHERE doctor_id = $1`
		args = append(args, doctorID)
	}
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("appointments: scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
