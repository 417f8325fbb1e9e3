package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// AccountRepository resolves identities and owns the atomic
	// account+profile creation paths. A pair either fully exists or not at
	// all; duplicate natural keys surface as apperror.Conflict.
	AccountRepository interface {
		CreateWithPatient(ctx context.Context, account *model.Account, profile *model.PatientProfile) error
		CreateWithProfessional(ctx context.Context, account *model.Account, profile *model.ProfessionalProfile) error
		CreateWithAdmin(ctx context.Context, account *model.Account, profile *model.AdminProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
		Deactivate(ctx context.Context, id uuid.UUID) error
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error)
		GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error)
		Update(ctx context.Context, profile *model.PatientProfile) error
	}

	ProfessionalRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.ProfessionalProfile, error)
		GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.ProfessionalProfile, error)
		Update(ctx context.Context, profile *model.ProfessionalProfile) error
		List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.ProfessionalProfile, error)
	}

	AdminRepository interface {
		GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.AdminProfile, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Mutate loads the appointment under a row lock, applies fn and
		// persists the result in one transaction. fn errors roll back.
		Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Appointment) error) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		DueForReminder(ctx context.Context, until time.Time) ([]*model.Appointment, error)
		MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	RecordRepository interface {
		Create(ctx context.Context, record *model.ClinicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error)
		Update(ctx context.Context, record *model.ClinicalRecord) error
		List(ctx context.Context, patientID, professionalID uuid.UUID, page *model.Pagination) ([]*model.ClinicalRecord, error)
	}
)
