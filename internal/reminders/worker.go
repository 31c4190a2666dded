// Package reminders sends next-day appointment reminders. A worker
// polls for appointments scheduled for tomorrow that are still active
// and have not been reminded yet, sends an email per appointment, and
// marks each one so it is never reminded twice.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/notify"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// AppointmentSource lists appointments due for a reminder and records
// that a reminder went out.
type AppointmentSource interface {
	DueReminders(ctx context.Context, date string) ([]*appointments.Appointment, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// ContactResolver maps a patient phone number to an email address.
// Implementations may consult the patient directory; a nil resolver
// means reminders are logged but not delivered.
type ContactResolver interface {
	EmailForPhone(ctx context.Context, phone string) (string, error)
}

// Worker processes due appointment reminders.
type Worker struct {
	source   AppointmentSource
	sender   notify.EmailSender
	contacts ContactResolver
	logger   *logging.Logger
	now      func() time.Time
}

// NewWorker creates a reminder worker. sender may be nil to disable
// delivery, in which case due reminders are still marked.
func NewWorker(source AppointmentSource, sender notify.EmailSender, contacts ContactResolver, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		source:   source,
		sender:   sender,
		contacts: contacts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run polls for due reminders until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("reminder sweep failed", "error", err)
			}
		}
	}
}

// ProcessDue sends reminders for every active appointment scheduled for
// tomorrow that has not been reminded. Returns the number processed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	tomorrow := w.now().AddDate(0, 0, 1).Format(appointments.DateLayout)

	due, err := w.source.DueReminders(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("reminders: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	w.logger.Info("processing due reminders", "date", tomorrow, "count", len(due))

	processed := 0
	for _, appt := range due {
		if err := w.processOne(ctx, appt); err != nil {
			w.logger.Error("failed to process reminder", "id", appt.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (w *Worker) processOne(ctx context.Context, appt *appointments.Appointment) error {
	if w.sender != nil && w.contacts != nil {
		email, err := w.contacts.EmailForPhone(ctx, appt.PatientPhone)
		if err != nil {
			return fmt.Errorf("resolve contact: %w", err)
		}
		if email != "" {
			msg := notify.EmailMessage{
				To:      email,
				ToName:  appt.PatientName,
				Subject: "تذكير بموعدك غداً",
				Body:    MessageTemplate(appt),
			}
			if err := w.sender.Send(ctx, msg); err != nil {
				return fmt.Errorf("send reminder: %w", err)
			}
		}
	}

	if err := w.source.MarkReminderSent(ctx, appt.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	w.logger.Info("reminder sent", "id", appt.ID, "date", appt.Date, "slot", appt.Slot)
	return nil
}

// MessageTemplate renders the reminder body for an appointment.
func MessageTemplate(appt *appointments.Appointment) string {
	return fmt.Sprintf("مرحباً %s، نذكرك بموعدك غداً %s الساعة %s. نرجو الحضور قبل الموعد بعشر دقائق.",
		appt.PatientName, appt.Date, appt.Slot)
}
