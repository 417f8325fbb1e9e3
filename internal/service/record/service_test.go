package record

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
)

type recordRepoMock struct {
	createFn func(ctx context.Context, record *model.ClinicalRecord) error
	getFn    func(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error)
	updateFn func(ctx context.Context, record *model.ClinicalRecord) error
	listFn   func(ctx context.Context, patientID, professionalID uuid.UUID, page *model.Pagination) ([]*model.ClinicalRecord, error)
}

func (m *recordRepoMock) Create(ctx context.Context, record *model.ClinicalRecord) error {
	return m.createFn(ctx, record)
}

func (m *recordRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error) {
	return m.getFn(ctx, id)
}

func (m *recordRepoMock) Update(ctx context.Context, record *model.ClinicalRecord) error {
	return m.updateFn(ctx, record)
}

func (m *recordRepoMock) List(ctx context.Context, patientID, professionalID uuid.UUID, page *model.Pagination) ([]*model.ClinicalRecord, error) {
	return m.listFn(ctx, patientID, professionalID, page)
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

type appointmentRepoMock struct {
	getFn func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
}

func (m *appointmentRepoMock) Create(ctx context.Context, appointment *model.Appointment) error {
	return nil
}

func (m *appointmentRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return m.getFn(ctx, id)
}

func (m *appointmentRepoMock) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Appointment) error) (*model.Appointment, error) {
	return nil, apperror.NotFound("appointment")
}

func (m *appointmentRepoMock) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *appointmentRepoMock) DueForReminder(ctx context.Context, until time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *appointmentRepoMock) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type fixture struct {
	service      *Service
	records      *recordRepoMock
	patients     *patientRepoMock
	appointments *appointmentRepoMock
	patientID    uuid.UUID
	doctorID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		patientID: uuid.New(),
		doctorID:  uuid.New(),
	}
	f.patients = &patientRepoMock{
		getFn: func(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
			if id != f.patientID {
				return nil, apperror.NotFound("patient")
			}
			return &model.PatientProfile{Base: model.Base{ID: id}}, nil
		},
	}
	f.appointments = &appointmentRepoMock{
		getFn: func(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
			return nil, apperror.NotFound("appointment")
		},
	}
	f.records = &recordRepoMock{
		createFn: func(ctx context.Context, record *model.ClinicalRecord) error { return nil },
		updateFn: func(ctx context.Context, record *model.ClinicalRecord) error { return nil },
	}
	f.service = NewService(f.records, f.patients, f.appointments, authz.NewEngine())
	return f
}

func (f *fixture) doctorActor() *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RoleProfessional, Active: true},
		ProfileID: f.doctorID,
	}
}

func (f *fixture) patientActor(profileID uuid.UUID) *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RolePatient, Active: true},
		ProfileID: profileID,
	}
}

func (f *fixture) adminActor() *authz.Actor {
	return &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RoleAdmin, Active: true},
		ProfileID: uuid.New(),
	}
}

func (f *fixture) record() *model.ClinicalRecord {
	record := &model.ClinicalRecord{
		Base:           model.NewBase(),
		PatientID:      f.patientID,
		ProfessionalID: f.doctorID,
		Diagnosis:      "stable angina",
		Attachments:    []string{"s3://records/ecg-1.pdf"},
	}
	f.records.getFn = func(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error) {
		if id != record.ID {
			return nil, apperror.NotFound("record")
		}
		copied := *record
		copied.Attachments = append([]string(nil), record.Attachments...)
		return &copied, nil
	}
	return record
}

func TestCreateRecordAuthoredByActingProfessional(t *testing.T) {
	f := newFixture(t)

	var created *model.ClinicalRecord
	f.records.createFn = func(ctx context.Context, record *model.ClinicalRecord) error {
		created = record
		return nil
	}

	_, err := f.service.Create(context.Background(), f.doctorActor(), &model.CreateRecordRequest{
		PatientID:      f.patientID,
		ChiefComplaint: "chest pain",
	})
	require.NoError(t, err)
	assert.Equal(t, f.doctorID, created.ProfessionalID)
	assert.Equal(t, f.patientID, created.PatientID)
}

func TestPatientsMayNotCreateRecords(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.patientActor(f.patientID), &model.CreateRecordRequest{
		PatientID: f.patientID,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestAdminsDoNotAuthorRecords(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.adminActor(), &model.CreateRecordRequest{
		PatientID: f.patientID,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestCreateRecordRequiresExistingPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.doctorActor(), &model.CreateRecordRequest{
		PatientID: uuid.New(),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestCreateRecordRejectsMismatchedAppointment(t *testing.T) {
	f := newFixture(t)
	appointmentID := uuid.New()
	f.appointments.getFn = func(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
		return &model.Appointment{
			Base:           model.Base{ID: id},
			PatientID:      f.patientID,
			ProfessionalID: uuid.New(),
		}, nil
	}

	_, err := f.service.Create(context.Background(), f.doctorActor(), &model.CreateRecordRequest{
		PatientID:     f.patientID,
		AppointmentID: &appointmentID,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAmendAppendsAttachments(t *testing.T) {
	f := newFixture(t)
	record := f.record()

	var updated *model.ClinicalRecord
	f.records.updateFn = func(ctx context.Context, rec *model.ClinicalRecord) error {
		updated = rec
		return nil
	}

	diagnosis := "unstable angina"
	_, err := f.service.Amend(context.Background(), f.doctorActor(), record.ID, &model.AmendRecordRequest{
		Diagnosis:      &diagnosis,
		NewAttachments: []string{"s3://records/ecg-2.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, "unstable angina", updated.Diagnosis)
	assert.Equal(t, []string{"s3://records/ecg-1.pdf", "s3://records/ecg-2.pdf"}, []string(updated.Attachments))
}

func TestOnlyAuthorOrAdminMayAmend(t *testing.T) {
	f := newFixture(t)
	record := f.record()

	otherDoctor := &authz.Actor{
		Account:   &model.Account{Base: model.NewBase(), Role: model.RoleProfessional, Active: true},
		ProfileID: uuid.New(),
	}
	_, err := f.service.Amend(context.Background(), otherDoctor, record.ID, &model.AmendRecordRequest{})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	_, err = f.service.Amend(context.Background(), f.patientActor(f.patientID), record.ID, &model.AmendRecordRequest{})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	_, err = f.service.Amend(context.Background(), f.adminActor(), record.ID, &model.AmendRecordRequest{})
	require.NoError(t, err)
}

func TestReadDeniesForeignPatient(t *testing.T) {
	f := newFixture(t)
	record := f.record()

	got, err := f.service.Read(context.Background(), f.patientActor(f.patientID), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = f.service.Read(context.Background(), f.patientActor(uuid.New()), record.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestListScopesProfessionalToOwnAuthorship(t *testing.T) {
	f := newFixture(t)

	var seenPatient, seenProfessional uuid.UUID
	f.records.listFn = func(ctx context.Context, patientID, professionalID uuid.UUID, page *model.Pagination) ([]*model.ClinicalRecord, error) {
		seenPatient, seenProfessional = patientID, professionalID
		return nil, nil
	}

	_, err := f.service.ListForPatient(context.Background(), f.doctorActor(), f.patientID, model.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, f.patientID, seenPatient)
	assert.Equal(t, f.doctorID, seenProfessional)

	_, err = f.service.ListForPatient(context.Background(), f.adminActor(), f.patientID, model.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, seenProfessional)

	_, err = f.service.ListForPatient(context.Background(), f.patientActor(uuid.New()), f.patientID, model.Pagination{})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}
