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
)

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{BaseRepository: NewBaseRepository(db)}
}

const professionalColumns = `
	id, account_id, license_number, specialty, phone, schedule, created_at, updated_at
`

func (r *professionalRepository) Get(ctx context.Context, id uuid.UUID) (*model.ProfessionalProfile, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional_profiles WHERE id = $1`
	var profile model.ProfessionalProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if nf := notFoundFrom(err, "professional"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get professional profile: %w", err)
	}
	return &profile, nil
}

func (r *professionalRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.ProfessionalProfile, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional_profiles WHERE account_id = $1`
	var profile model.ProfessionalProfile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if nf := notFoundFrom(err, "professional"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get professional profile by account: %w", err)
	}
	return &profile, nil
}

func (r *professionalRepository) Update(ctx context.Context, profile *model.ProfessionalProfile) error {
	query := `
		UPDATE professional_profiles
		SET phone = $1, schedule = $2, updated_at = $3
		WHERE id = $4
	`
	profile.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		profile.Phone,
		profile.Schedule,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update professional profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("professional")
	}
	return nil
}

func (r *professionalRepository) List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.ProfessionalProfile, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional_profiles WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.Specialty != "" {
		query += fmt.Sprintf(" AND specialty = $%d", argCount)
		args = append(args, filters.Specialty)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit(), filters.Offset())

	var profiles []*model.ProfessionalProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return profiles, nil
}
