package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/security"
	"github.com/clinicore/clinic-api/pkg/token"
)

// RevocationStore remembers revoked token ids until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	accountRepo      repository.AccountRepository
	patientRepo      repository.PatientRepository
	professionalRepo repository.ProfessionalRepository
	adminRepo        repository.AdminRepository
	hasher           security.PasswordHasher
	issuer           token.Issuer
	revocations      RevocationStore
}

func NewService(
	accountRepo repository.AccountRepository,
	patientRepo repository.PatientRepository,
	professionalRepo repository.ProfessionalRepository,
	adminRepo repository.AdminRepository,
	hasher security.PasswordHasher,
	issuer token.Issuer,
	revocations RevocationStore,
) *Service {
	return &Service{
		accountRepo:      accountRepo,
		patientRepo:      patientRepo,
		professionalRepo: professionalRepo,
		adminRepo:        adminRepo,
		hasher:           hasher,
		issuer:           issuer,
		revocations:      revocations,
	}
}

// Login verifies the presented secret and issues a session token. Unknown
// emails, bad passwords and inactive accounts are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !account.Active {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	signed, expiresAt, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a bearer token to the acting account and its
// role-specific profile id. Every failure is Unauthorized.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*authz.Actor, error) {
	claims, err := s.issuer.Verify(bearer)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, apperror.Unauthorized("token expired")
		case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrInvalidSignature):
			return nil, apperror.Unauthorized("invalid token")
		default:
			return nil, err
		}
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperror.Unauthorized("token revoked")
	}

	account, err := s.accountRepo.Get(ctx, claims.AccountID)
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			return nil, apperror.Unauthorized("account not found")
		}
		return nil, err
	}
	if !account.Active {
		return nil, apperror.Unauthorized("account is inactive")
	}

	profileID, err := s.resolveProfileID(ctx, account)
	if err != nil {
		return nil, err
	}

	return &authz.Actor{Account: account, ProfileID: profileID}, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, bearer string) error {
	claims, err := s.issuer.Verify(bearer)
	if err != nil {
		return apperror.Unauthorized("invalid token")
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) resolveProfileID(ctx context.Context, account *model.Account) (uuid.UUID, error) {
	switch account.Role {
	case model.RolePatient:
		profile, err := s.patientRepo.GetByAccount(ctx, account.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return profile.ID, nil
	case model.RoleProfessional:
		profile, err := s.professionalRepo.GetByAccount(ctx, account.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return profile.ID, nil
	case model.RoleAdmin:
		profile, err := s.adminRepo.GetByAccount(ctx, account.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return profile.ID, nil
	default:
		return uuid.Nil, apperror.Forbidden("unknown role")
	}
}
