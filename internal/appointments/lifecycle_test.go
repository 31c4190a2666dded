package appointments

import (
	"context"
	"strings"
	"testing"
	"time"
)

type stubSchedules struct {
	offDates map[string]bool
	err      error
}

func (s stubSchedules) IsDayOff(_ context.Context, _ string, date string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.offDates[date], nil
}

func newTestLifecycle(repo Repository, schedules ScheduleSource) *Lifecycle {
	l := NewLifecycle(repo, schedules, nil)
	l.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestSetStatusFollowsStateMachine(t *testing.T) {
	repo := NewInMemoryRepository()
	l := newTestLifecycle(repo, nil)
	ctx := context.Background()

	appt := seedAppointment(t, repo, func(a *Appointment) { a.Status = StatusPending })

	updated, err := l.SetStatus(ctx, appt.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Fatalf("got %s, want Confirmed", updated.Status)
	}

	if _, err := l.SetStatus(ctx, appt.ID, StatusPending); err != ErrInvalidTransition {
		t.Errorf("confirmed -> pending: got %v, want ErrInvalidTransition", err)
	}

	if _, err := l.SetStatus(ctx, appt.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := l.SetStatus(ctx, appt.ID, StatusCancelled); err != ErrInvalidTransition {
		t.Errorf("completed is terminal: got %v, want ErrInvalidTransition", err)
	}

	if _, err := l.SetStatus(ctx, appt.ID, Status("Booked")); err != ErrInvalidStatus {
		t.Errorf("unknown status: got %v, want ErrInvalidStatus", err)
	}
	if _, err := l.SetStatus(ctx, "missing", StatusConfirmed); err != ErrNotFound {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestCancelAppendsAuditNoteAndFreesSlot(t *testing.T) {
	repo := NewInMemoryRepository()
	l := newTestLifecycle(repo, nil)
	ctx := context.Background()

	appt := seedAppointment(t, repo, func(a *Appointment) { a.Notes = "ملاحظة" })

	cancelled, err := l.Cancel(ctx, appt.ID, "سفر")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("got %s, want Cancelled", cancelled.Status)
	}
	if cancelled.Notes != "ملاحظة\n[إلغاء 01/09/2026: سفر]" {
		t.Errorf("audit note: got %q", cancelled.Notes)
	}

	// Cancellation keeps the record but releases the slot.
	if _, err := repo.GetByID(ctx, appt.ID); err != nil {
		t.Fatalf("record should survive cancellation: %v", err)
	}
	if _, err := repo.Create(ctx, &Appointment{
		PatientName:  "ليلى حسن",
		PatientPhone: "0782222222",
		DoctorID:     appt.DoctorID,
		Date:         appt.Date,
		Slot:         appt.Slot,
		ProcedureID:  "cleaning",
		Status:       StatusConfirmed,
	}); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}

	if _, err := l.Cancel(ctx, appt.ID, ""); err != ErrInvalidTransition {
		t.Errorf("double cancel: got %v, want ErrInvalidTransition", err)
	}
}

func TestEditReschedule(t *testing.T) {
	repo := NewInMemoryRepository()
	schedules := stubSchedules{offDates: map[string]bool{"2026-09-04": true}}
	l := newTestLifecycle(repo, schedules)
	ctx := context.Background()

	appt := seedAppointment(t, repo, nil)
	seedAppointment(t, repo, func(a *Appointment) {
		a.Slot = "11:00 صباحاً"
		a.PatientPhone = "0782222222"
	})

	// Moving onto an occupied slot is rejected before persistence.
	slot := "11:00 صباحاً"
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Slot: &slot}); err != ErrSlotTaken {
		t.Fatalf("occupied target: got %v, want ErrSlotTaken", err)
	}

	// Moving onto a closed day is rejected.
	offDate := "2026-09-04"
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Date: &offDate}); err != ErrDayClosed {
		t.Fatalf("closed day: got %v, want ErrDayClosed", err)
	}

	// A valid move persists and records the change reason.
	newDate := "2026-09-03"
	updated, err := l.Edit(ctx, appt.ID, EditRequest{Date: &newDate, ChangeReason: "طلب المريض"})
	if err != nil {
		t.Fatalf("valid reschedule: %v", err)
	}
	if updated.Date != newDate {
		t.Errorf("date not applied: %s", updated.Date)
	}
	if !strings.Contains(updated.Notes, "[تعديل 01/09/2026: طلب المريض]") {
		t.Errorf("change reason missing from notes: %q", updated.Notes)
	}

	// The vacated slot is bookable again.
	if _, err := repo.Create(ctx, &Appointment{
		PatientName:  "نور علي",
		PatientPhone: "0783333333",
		DoctorID:     "dr-khalid",
		Date:         "2026-09-02",
		Slot:         "10:00 صباحاً",
		ProcedureID:  "cleaning",
		Status:       StatusConfirmed,
	}); err != nil {
		t.Fatalf("vacated slot should be free: %v", err)
	}
}

func TestEditTerminalAppointment(t *testing.T) {
	repo := NewInMemoryRepository()
	l := newTestLifecycle(repo, nil)
	ctx := context.Background()

	appt := seedAppointment(t, repo, func(a *Appointment) { a.Status = StatusCancelled })

	newDate := "2026-09-03"
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Date: &newDate}); err != ErrInvalidTransition {
		t.Fatalf("terminal reschedule: got %v, want ErrInvalidTransition", err)
	}

	// Note edits remain allowed for record-keeping.
	notes := "تصحيح السجل"
	updated, err := l.Edit(ctx, appt.ID, EditRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("terminal note edit: %v", err)
	}
	if updated.Notes != notes {
		t.Errorf("got %q, want %q", updated.Notes, notes)
	}
}

func TestEditValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	l := newTestLifecycle(repo, nil)
	ctx := context.Background()

	appt := seedAppointment(t, repo, nil)

	badDate := "31/12/2026"
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Date: &badDate}); err != ErrInvalidDate {
		t.Errorf("bad date: got %v, want ErrInvalidDate", err)
	}
	emptySlot := "  "
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Slot: &emptySlot}); err != ErrMissingSlot {
		t.Errorf("empty slot: got %v, want ErrMissingSlot", err)
	}
	emptyName := ""
	if _, err := l.Edit(ctx, appt.ID, EditRequest{PatientName: &emptyName}); err != ErrMissingPatientName {
		t.Errorf("empty name: got %v, want ErrMissingPatientName", err)
	}

	badStatus := StatusPending
	if _, err := l.Edit(ctx, appt.ID, EditRequest{Status: &badStatus}); err != ErrInvalidTransition {
		t.Errorf("confirmed -> pending: got %v, want ErrInvalidTransition", err)
	}
}
