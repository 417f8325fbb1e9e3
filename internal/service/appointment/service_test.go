package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/logger"
)

type appointmentRepoMock struct {
	createFn func(ctx context.Context, appointment *model.Appointment) error
	getFn    func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	listFn   func(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

func (m *appointmentRepoMock) Create(ctx context.Context, appointment *model.Appointment) error {
	if m.createFn != nil {
		return m.createFn(ctx, appointment)
	}
	return nil
}

func (m *appointmentRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return m.getFn(ctx, id)
}

// Mutate mirrors the store contract in memory: load, apply, persist.
func (m *appointmentRepoMock) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Appointment) error) (*model.Appointment, error) {
	appointment, err := m.getFn(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (m *appointmentRepoMock) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return m.listFn(ctx, filters)
}

func (m *appointmentRepoMock) DueForReminder(ctx context.Context, until time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *appointmentRepoMock) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type patientRepoMock struct {
	getFn func(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error)
}

func (m *patientRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	return m.getFn(ctx, id)
}

func (m *patientRepoMock) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	return nil, apperror.NotFound("patient")
}

func (m *patientRepoMock) Update(ctx context.Context, profile *model.PatientProfile) error {
	return nil
}

type professionalRepoMock struct {
	getFn func(ctx context.Context, id uuid.UUID) (*model.ProfessionalProfile, error)
}

func (m *professionalRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.ProfessionalProfile, error) {
	return m.getFn(ctx, id)
}

func (m *professionalRepoMock) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.ProfessionalProfile, error) {
	return nil, apperror.NotFound("professional")
}

func (m *professionalRepoMock) Update(ctx context.Context, profile *model.ProfessionalProfile) error {
	return nil
}

func (m *professionalRepoMock) List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.ProfessionalProfile, error) {
	return nil, nil
}

type linkGeneratorMock struct {
	calls int
}

func (g *linkGeneratorMock) Generate(appointmentID uuid.UUID) string {
	g.calls++
	return "https://telemed.test/rooms/" + uuid.NewString()
}

type notifierMock struct {
	confirmed []uuid.UUID
	cancelled []uuid.UUID
}

func (n *notifierMock) AppointmentConfirmed(ctx context.Context, appointment *model.Appointment) error {
	n.confirmed = append(n.confirmed, appointment.ID)
	return nil
}

func (n *notifierMock) AppointmentCancelled(ctx context.Context, appointment *model.Appointment) error {
	n.cancelled = append(n.cancelled, appointment.ID)
	return nil
}

type fixture struct {
	service   *Service
	repo      *appointmentRepoMock
	links     *linkGeneratorMock
	notifier  *notifierMock
	patients  *patientRepoMock
	doctors   *professionalRepoMock
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		patientID: uuid.New(),
		doctorID:  uuid.New(),
		links:     &linkGeneratorMock{},
		notifier:  &notifierMock{},
	}
	f.patients = &patientRepoMock{
		getFn: func(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
			if id != f.patientID {
				return nil, apperror.NotFound("patient")
			}
			return &model.PatientProfile{Base: model.Base{ID: id}}, nil
		},
	}
	f.doctors = &professionalRepoMock{
		getFn: func(ctx context.Context, id uuid.UUID) (*model.ProfessionalProfile, error) {
			if id != f.doctorID {
				return nil, apperror.NotFound("professional")
			}
			return &model.ProfessionalProfile{Base: model.Base{ID: id}}, nil
		},
	}
	f.repo = &appointmentRepoMock{}
	f.service = NewService(
		f.repo, f.patients, f.doctors,
		authz.NewEngine(), f.links, f.notifier, logger.NewLogger(nil),
	)
	return f
}

func (f *fixture) patientActor() *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RolePatient, Active: true},
		ProfileID: f.patientID,
	}
}

func (f *fixture) doctorActor() *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RoleProfessional, Active: true},
		ProfileID: f.doctorID,
	}
}

func (f *fixture) adminActor() *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RoleAdmin, Active: true},
		ProfileID: uuid.New(),
	}
}

func (f *fixture) appointment(status model.AppointmentStatus, modality model.Modality, scheduledAt time.Time) *model.Appointment {
	appointment := &model.Appointment{
		Base:           model.NewBase(),
		PatientID:      f.patientID,
		ProfessionalID: f.doctorID,
		ScheduledAt:    scheduledAt,
		Modality:       modality,
		Status:         status,
	}
	f.repo.getFn = func(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
		if id != appointment.ID {
			return nil, apperror.NotFound("appointment")
		}
		copied := *appointment
		return &copied, nil
	}
	return appointment
}

func transitionReq(status model.AppointmentStatus) *model.TransitionAppointmentRequest {
	return &model.TransitionAppointmentRequest{Status: status}
}

func TestCreateRequiresFutureSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.doctorActor(), &model.CreateAppointmentRequest{
		PatientID:      f.patientID,
		ProfessionalID: f.doctorID,
		ScheduledAt:    time.Now().Add(-time.Hour),
		Modality:       model.ModalityInPerson,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidSchedule))
}

func TestCreateRequiresExistingParticipants(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.adminActor(), &model.CreateAppointmentRequest{
		PatientID:      uuid.New(),
		ProfessionalID: f.doctorID,
		ScheduledAt:    time.Now().Add(time.Hour),
		Modality:       model.ModalityInPerson,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	_, err = f.service.Create(context.Background(), f.adminActor(), &model.CreateAppointmentRequest{
		PatientID:      f.patientID,
		ProfessionalID: uuid.New(),
		ScheduledAt:    time.Now().Add(time.Hour),
		Modality:       model.ModalityInPerson,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestPatientsMayNotCreateAppointments(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.patientActor(), &model.CreateAppointmentRequest{
		PatientID:      f.patientID,
		ProfessionalID: f.doctorID,
		ScheduledAt:    time.Now().Add(time.Hour),
		Modality:       model.ModalityInPerson,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestCreateStartsScheduledWithoutLink(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Create(context.Background(), f.doctorActor(), &model.CreateAppointmentRequest{
		PatientID:      f.patientID,
		ProfessionalID: f.doctorID,
		ScheduledAt:    time.Now().Add(time.Hour),
		Modality:       model.ModalityTelemedicine,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, appointment.Status)
	assert.Nil(t, appointment.TelemedicineLink)
}

func TestConfirmGeneratesLinkOnceForTelemedicine(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityTelemedicine, time.Now().Add(time.Hour))

	confirmed, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
	require.NoError(t, err)
	require.NotNil(t, confirmed.TelemedicineLink)
	firstLink := *confirmed.TelemedicineLink
	assert.Equal(t, 1, f.links.calls)
	assert.Len(t, f.notifier.confirmed, 1)

	// Confirming again keeps the original link.
	*appointment = *confirmed
	reconfirmed, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
	require.NoError(t, err)
	require.NotNil(t, reconfirmed.TelemedicineLink)
	assert.Equal(t, firstLink, *reconfirmed.TelemedicineLink)
	assert.Equal(t, 1, f.links.calls)
}

func TestConfirmInPersonNeverGetsLink(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	confirmed, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
	require.NoError(t, err)
	assert.Nil(t, confirmed.TelemedicineLink)
	assert.Zero(t, f.links.calls)
}

func TestPatientsMayNotConfirm(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	_, err := f.service.Transition(context.Background(), f.patientActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestStartBeforeScheduledTimeForbidden(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusConfirmed, model.ModalityInPerson, time.Now().Add(time.Hour))

	_, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestStartAfterScheduledTime(t *testing.T) {
	f := newFixture(t)
	scheduledAt := time.Now().Add(time.Hour)
	appointment := f.appointment(model.AppointmentStatusConfirmed, model.ModalityInPerson, scheduledAt)
	f.service.now = func() time.Time { return scheduledAt.Add(time.Minute) }

	started, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, started.Status)
}

func TestOnlyProfessionalMayStart(t *testing.T) {
	f := newFixture(t)
	scheduledAt := time.Now().Add(-time.Hour)
	appointment := f.appointment(model.AppointmentStatusConfirmed, model.ModalityInPerson, scheduledAt)

	_, err := f.service.Transition(context.Background(), f.adminActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestSkippingStatesIsInvalid(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	_, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusCompleted))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))

	_, err = f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	f := newFixture(t)

	for _, terminal := range []model.AppointmentStatus{model.AppointmentStatusCompleted, model.AppointmentStatusCancelled} {
		appointment := f.appointment(terminal, model.ModalityInPerson, time.Now().Add(-time.Hour))
		_, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition), "from %s", terminal)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	_, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatus("postponed")))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestPatientMayCancelOwnAppointment(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	cancelled, err := f.service.Transition(context.Background(), f.patientActor(), appointment.ID, transitionReq(model.AppointmentStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Len(t, f.notifier.cancelled, 1)
}

func TestForeignPatientMayNotTouchAppointment(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityInPerson, time.Now().Add(time.Hour))

	stranger := &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RolePatient, Active: true},
		ProfileID: uuid.New(),
	}
	_, err := f.service.Transition(context.Background(), stranger, appointment.ID, transitionReq(model.AppointmentStatusCancelled))
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	_, err = f.service.Get(context.Background(), stranger, appointment.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestCancelAfterStartIsInvalid(t *testing.T) {
	f := newFixture(t)
	appointment := f.appointment(model.AppointmentStatusInProgress, model.ModalityInPerson, time.Now().Add(-time.Hour))

	_, err := f.service.Transition(context.Background(), f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusCancelled))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
}

func TestListScopesToActor(t *testing.T) {
	f := newFixture(t)

	var seen *model.AppointmentFilters
	f.repo.listFn = func(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
		seen = filters
		return nil, nil
	}

	_, err := f.service.List(context.Background(), f.patientActor(), &model.AppointmentFilters{})
	require.NoError(t, err)
	assert.Equal(t, f.patientID, seen.PatientID)

	_, err = f.service.List(context.Background(), f.doctorActor(), &model.AppointmentFilters{})
	require.NoError(t, err)
	assert.Equal(t, f.doctorID, seen.ProfessionalID)

	_, err = f.service.List(context.Background(), f.adminActor(), &model.AppointmentFilters{})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, seen.PatientID)
	assert.Equal(t, uuid.Nil, seen.ProfessionalID)
}

func TestHistoryScopesProfessionalToOwnAssignments(t *testing.T) {
	f := newFixture(t)

	var seen *model.AppointmentFilters
	f.repo.listFn = func(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
		seen = filters
		return nil, nil
	}

	_, err := f.service.HistoryForPatient(context.Background(), f.doctorActor(), f.patientID, model.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, f.patientID, seen.PatientID)
	assert.Equal(t, f.doctorID, seen.ProfessionalID)

	// A patient asking for another patient's history is denied outright.
	_, err = f.service.HistoryForPatient(context.Background(), f.patientActor(), uuid.New(), model.Pagination{})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

// The full lifecycle of a telemedicine visit, start to finish.
func TestTelemedicineVisitLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheduledAt := time.Now().Add(time.Hour)
	appointment := f.appointment(model.AppointmentStatusScheduled, model.ModalityTelemedicine, scheduledAt)

	confirmed, err := f.service.Transition(ctx, f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusConfirmed))
	require.NoError(t, err)
	require.NotNil(t, confirmed.TelemedicineLink)

	// The patient can see the confirmed appointment and its link.
	*appointment = *confirmed
	seen, err := f.service.Get(ctx, f.patientActor(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, *confirmed.TelemedicineLink, *seen.TelemedicineLink)

	// Too early to start.
	_, err = f.service.Transition(ctx, f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	// Once the slot arrives the professional starts and completes the visit.
	f.service.now = func() time.Time { return scheduledAt.Add(time.Minute) }
	started, err := f.service.Transition(ctx, f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusInProgress))
	require.NoError(t, err)
	*appointment = *started

	done, err := f.service.Transition(ctx, f.doctorActor(), appointment.ID, transitionReq(model.AppointmentStatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, done.Status)
}
