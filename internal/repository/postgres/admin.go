package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
)

type adminRepository struct {
	BaseRepository
}

func NewAdminRepository(db *sqlx.DB) repository.AdminRepository {
	return &adminRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *adminRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.AdminProfile, error) {
	query := `
		SELECT id, account_id, department, permissions, created_at, updated_at
		FROM admin_profiles
		WHERE account_id = $1
	`
	var profile model.AdminProfile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if nf := notFoundFrom(err, "admin"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get admin profile: %w", err)
	}
	return &profile, nil
}
