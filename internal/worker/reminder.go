package worker

import (
	"context"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/logger"
)

// Notifier delivers reminder emails for upcoming appointments.
type Notifier interface {
	AppointmentReminder(ctx context.Context, appointment *model.Appointment) error
}

// ReminderWorker periodically scans for confirmed appointments starting
// within the lead window and notifies both participants once. A failed
// delivery is retried on the next tick because the appointment is only
// marked reminded after a successful send.
type ReminderWorker struct {
	repo     repository.AppointmentRepository
	notifier Notifier
	log      *logger.Logger
	lead     time.Duration
	interval time.Duration
}

func NewReminderWorker(
	repo repository.AppointmentRepository,
	notifier Notifier,
	log *logger.Logger,
	lead, interval time.Duration,
) *ReminderWorker {
	return &ReminderWorker{
		repo:     repo,
		notifier: notifier,
		log:      log,
		lead:     lead,
		interval: interval,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	due, err := w.repo.DueForReminder(ctx, time.Now().Add(w.lead))
	if err != nil {
		w.log.Error(err, "failed to list appointments due for reminder")
		return
	}

	for _, appointment := range due {
		if err := w.notifier.AppointmentReminder(ctx, appointment); err != nil {
			w.log.Error(err, "failed to send appointment reminder",
				"appointment_id", appointment.ID.String())
			continue
		}
		if err := w.repo.MarkReminded(ctx, appointment.ID, time.Now()); err != nil {
			w.log.Error(err, "failed to mark appointment reminded",
				"appointment_id", appointment.ID.String())
		}
	}
}
