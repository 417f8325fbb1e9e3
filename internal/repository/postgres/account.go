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

type accountRepository struct {
	BaseRepository
	enc security.Encryptor
}

func NewAccountRepository(db *sqlx.DB, enc security.Encryptor) repository.AccountRepository {
	return &accountRepository{BaseRepository: NewBaseRepository(db), enc: enc}
}

const insertAccount = `
	INSERT INTO accounts (id, name, email, password_hash, role, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func insertAccountTx(ctx context.Context, tx *sqlx.Tx, account *model.Account) error {
	_, err := tx.ExecContext(ctx, insertAccount,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return err
}

func (r *accountRepository) CreateWithPatient(ctx context.Context, account *model.Account, profile *model.PatientProfile) error {
	card, err := sealField(r.enc, profile.InsuranceCardNo)
	if err != nil {
		return err
	}
	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertAccountTx(ctx, tx, account); err != nil {
			return err
		}
		query := `
			INSERT INTO patient_profiles (
				id, account_id, national_id, document_id, birth_date, phone,
				address, emergency_contact, insurance_plan, insurance_card_number,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, query,
			profile.ID,
			profile.AccountID,
			profile.NationalID,
			profile.DocumentID,
			profile.BirthDate,
			profile.Phone,
			profile.Address,
			profile.EmergencyContact,
			profile.InsurancePlan,
			card,
			profile.CreatedAt,
			profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if conflict := conflictFrom(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create patient account: %w", err)
	}
	return nil
}

func (r *accountRepository) CreateWithProfessional(ctx context.Context, account *model.Account, profile *model.ProfessionalProfile) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertAccountTx(ctx, tx, account); err != nil {
			return err
		}
		query := `
			INSERT INTO professional_profiles (
				id, account_id, license_number, specialty, phone, schedule,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, query,
			profile.ID,
			profile.AccountID,
			profile.LicenseNumber,
			profile.Specialty,
			profile.Phone,
			profile.Schedule,
			profile.CreatedAt,
			profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if conflict := conflictFrom(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create professional account: %w", err)
	}
	return nil
}

func (r *accountRepository) CreateWithAdmin(ctx context.Context, account *model.Account, profile *model.AdminProfile) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertAccountTx(ctx, tx, account); err != nil {
			return err
		}
		query := `
			INSERT INTO admin_profiles (id, account_id, department, permissions, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, query,
			profile.ID,
			profile.AccountID,
			profile.Department,
			profile.Permissions,
			profile.CreatedAt,
			profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if conflict := conflictFrom(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, active, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if nf := notFoundFrom(err, "account"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, active, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if nf := notFoundFrom(err, "account"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET active = false, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("account")
	}
	return nil
}
