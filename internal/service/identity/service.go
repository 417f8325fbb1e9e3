package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/security"
)

const (
	directoryCacheTTL     = time.Minute
	directoryCacheCleanup = 5 * time.Minute
)

// Service owns account+profile registration, profile access and the public
// professional directory. Registration of a pair is atomic at the store
// boundary: either both rows exist or neither does.
type Service struct {
	accountRepo      repository.AccountRepository
	patientRepo      repository.PatientRepository
	professionalRepo repository.ProfessionalRepository
	engine           *authz.Engine
	hasher           security.PasswordHasher
	directoryCache   *gocache.Cache
}

func NewService(
	accountRepo repository.AccountRepository,
	patientRepo repository.PatientRepository,
	professionalRepo repository.ProfessionalRepository,
	engine *authz.Engine,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		accountRepo:      accountRepo,
		patientRepo:      patientRepo,
		professionalRepo: professionalRepo,
		engine:           engine,
		hasher:           hasher,
		directoryCache:   gocache.New(directoryCacheTTL, directoryCacheCleanup),
	}
}

// RegisterPatient is the only public registration path.
func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.RegisteredAccount, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Validation("invalid password", err)
	}

	account := &model.Account{
		Base:         model.NewBase(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RolePatient,
		Active:       true,
	}
	profile := &model.PatientProfile{
		Base:             model.NewBase(),
		AccountID:        account.ID,
		NationalID:       req.NationalID,
		DocumentID:       req.DocumentID,
		BirthDate:        req.BirthDate,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		InsurancePlan:    req.InsurancePlan,
		InsuranceCardNo:  req.InsuranceCardNo,
	}

	if err := s.accountRepo.CreateWithPatient(ctx, account, profile); err != nil {
		return nil, err
	}
	return &model.RegisteredAccount{Account: account, ProfileID: profile.ID}, nil
}

// RegisterProfessional requires an admin actor.
func (s *Service) RegisterProfessional(ctx context.Context, actor *authz.Actor, req *model.RegisterProfessionalRequest) (*model.RegisteredAccount, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCreateAccount, authz.ResourceRef{TargetRole: model.RoleProfessional}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	if !req.Specialty.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown specialty %q", req.Specialty), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Validation("invalid password", err)
	}

	account := &model.Account{
		Base:         model.NewBase(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleProfessional,
		Active:       true,
	}
	profile := &model.ProfessionalProfile{
		Base:          model.NewBase(),
		AccountID:     account.ID,
		LicenseNumber: req.LicenseNumber,
		Specialty:     req.Specialty,
		Phone:         req.Phone,
		Schedule:      req.Schedule,
	}

	if err := s.accountRepo.CreateWithProfessional(ctx, account, profile); err != nil {
		return nil, err
	}
	s.directoryCache.Flush()
	return &model.RegisteredAccount{Account: account, ProfileID: profile.ID}, nil
}

// RegisterAdmin requires an admin actor; the first admin is seeded outside
// the API.
func (s *Service) RegisterAdmin(ctx context.Context, actor *authz.Actor, req *model.RegisterAdminRequest) (*model.RegisteredAccount, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCreateAccount, authz.ResourceRef{TargetRole: model.RoleAdmin}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Validation("invalid password", err)
	}

	account := &model.Account{
		Base:         model.NewBase(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	profile := &model.AdminProfile{
		Base:        model.NewBase(),
		AccountID:   account.ID,
		Department:  req.Department,
		Permissions: req.Permissions,
	}

	if err := s.accountRepo.CreateWithAdmin(ctx, account, profile); err != nil {
		return nil, err
	}
	return &model.RegisteredAccount{Account: account, ProfileID: profile.ID}, nil
}

func (s *Service) GetPatientProfile(ctx context.Context, actor *authz.Actor, patientID uuid.UUID) (*model.PatientProfile, error) {
	if decision := s.engine.Authorize(actor, authz.ActionReadProfile, authz.ResourceRef{PatientID: patientID}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	return s.patientRepo.Get(ctx, patientID)
}

func (s *Service) UpdatePatientProfile(ctx context.Context, actor *authz.Actor, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.PatientProfile, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUpdateProfile, authz.ResourceRef{PatientID: patientID}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	profile, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	req.Apply(profile)
	if err := s.patientRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) GetProfessionalProfile(ctx context.Context, actor *authz.Actor, professionalID uuid.UUID) (*model.ProfessionalProfile, error) {
	if decision := s.engine.Authorize(actor, authz.ActionReadProfile, authz.ResourceRef{ProfessionalID: professionalID}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	return s.professionalRepo.Get(ctx, professionalID)
}

func (s *Service) UpdateProfessionalProfile(ctx context.Context, actor *authz.Actor, professionalID uuid.UUID, req *model.UpdateProfessionalRequest) (*model.ProfessionalProfile, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUpdateProfile, authz.ResourceRef{ProfessionalID: professionalID}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	profile, err := s.professionalRepo.Get(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	req.Apply(profile)
	if err := s.professionalRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfessionals serves the public directory to any authenticated actor.
// Results are cached briefly; registration of a professional flushes the
// cache.
func (s *Service) ListProfessionals(ctx context.Context, actor *authz.Actor, filters *model.ProfessionalFilters) ([]*model.ProfessionalProfile, error) {
	if decision := s.engine.Authorize(actor, authz.ActionListProfiles, authz.ResourceRef{}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	key := fmt.Sprintf("directory:%s:%d:%d", filters.Specialty, filters.Page, filters.PageSize)
	if cached, ok := s.directoryCache.Get(key); ok {
		return cached.([]*model.ProfessionalProfile), nil
	}

	profiles, err := s.professionalRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	s.directoryCache.SetDefault(key, profiles)
	return profiles, nil
}

// DeactivateAccount flips the active flag; rows are never deleted, and the
// account's natural keys remain reserved.
func (s *Service) DeactivateAccount(ctx context.Context, actor *authz.Actor, accountID uuid.UUID) error {
	if decision := s.engine.Authorize(actor, authz.ActionDeactivateAccount, authz.ResourceRef{}); !decision.Allowed {
		return apperror.Forbidden(decision.Reason)
	}
	return s.accountRepo.Deactivate(ctx, accountID)
}
