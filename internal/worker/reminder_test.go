package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/logger"
)

type appointmentRepoMock struct {
	due      []*model.Appointment
	reminded []uuid.UUID
}

func (m *appointmentRepoMock) Create(ctx context.Context, appointment *model.Appointment) error {
	return nil
}

func (m *appointmentRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, apperror.NotFound("appointment")
}

func (m *appointmentRepoMock) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Appointment) error) (*model.Appointment, error) {
	return nil, apperror.NotFound("appointment")
}

func (m *appointmentRepoMock) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *appointmentRepoMock) DueForReminder(ctx context.Context, until time.Time) ([]*model.Appointment, error) {
	return m.due, nil
}

func (m *appointmentRepoMock) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.reminded = append(m.reminded, id)
	return nil
}

type notifierMock struct {
	sent    []uuid.UUID
	failFor map[uuid.UUID]bool
}

func (n *notifierMock) AppointmentReminder(ctx context.Context, appointment *model.Appointment) error {
	if n.failFor[appointment.ID] {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, appointment.ID)
	return nil
}

func dueAppointment() *model.Appointment {
	return &model.Appointment{
		Base:        model.NewBase(),
		ScheduledAt: time.Now().Add(2 * time.Hour),
		Status:      model.AppointmentStatusConfirmed,
	}
}

func TestRemindsEachDueAppointmentOnce(t *testing.T) {
	first, second := dueAppointment(), dueAppointment()
	repo := &appointmentRepoMock{due: []*model.Appointment{first, second}}
	notifier := &notifierMock{}

	w := NewReminderWorker(repo, notifier, logger.NewLogger(nil), 24*time.Hour, time.Minute)
	w.run(context.Background())

	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, notifier.sent)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, repo.reminded)
}

func TestFailedDeliveryIsNotMarkedReminded(t *testing.T) {
	ok, failing := dueAppointment(), dueAppointment()
	repo := &appointmentRepoMock{due: []*model.Appointment{failing, ok}}
	notifier := &notifierMock{failFor: map[uuid.UUID]bool{failing.ID: true}}

	w := NewReminderWorker(repo, notifier, logger.NewLogger(nil), 24*time.Hour, time.Minute)
	w.run(context.Background())

	assert.Equal(t, []uuid.UUID{ok.ID}, notifier.sent)
	assert.Equal(t, []uuid.UUID{ok.ID}, repo.reminded)
}
