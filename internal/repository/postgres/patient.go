package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/security"
)

type patientRepository struct {
	BaseRepository
	enc security.Encryptor
}

// NewPatientRepository stores patient profiles. Insurance card numbers are
// sealed with enc before they touch the database; pass nil to store them
// in the clear.
func NewPatientRepository(db *sqlx.DB, enc security.Encryptor) repository.PatientRepository {
	return &patientRepository{BaseRepository: NewBaseRepository(db), enc: enc}
}

const patientColumns = `
	id, account_id, national_id, document_id, birth_date, phone,
	address, emergency_contact, insurance_plan, insurance_card_number,
	created_at, updated_at
`

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT ` + patientColumns + ` FROM patient_profiles WHERE id = $1`
	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if nf := notFoundFrom(err, "patient"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get patient profile: %w", err)
	}
	card, err := openField(r.enc, profile.InsuranceCardNo)
	if err != nil {
		return nil, err
	}
	profile.InsuranceCardNo = card
	return &profile, nil
}

func (r *patientRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT ` + patientColumns + ` FROM patient_profiles WHERE account_id = $1`
	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if nf := notFoundFrom(err, "patient"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get patient profile by account: %w", err)
	}
	card, err := openField(r.enc, profile.InsuranceCardNo)
	if err != nil {
		return nil, err
	}
	profile.InsuranceCardNo = card
	return &profile, nil
}

func (r *patientRepository) Update(ctx context.Context, profile *model.PatientProfile) error {
	query := `
		UPDATE patient_profiles
		SET document_id = $1, birth_date = $2, phone = $3, address = $4,
			emergency_contact = $5, insurance_plan = $6, insurance_card_number = $7,
			updated_at = $8
		WHERE id = $9
	`
	card, err := sealField(r.enc, profile.InsuranceCardNo)
	if err != nil {
		return err
	}
	profile.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		profile.DocumentID,
		profile.BirthDate,
		profile.Phone,
		profile.Address,
		profile.EmergencyContact,
		profile.InsurancePlan,
		card,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("patient")
	}
	return nil
}
