package record

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/apperror"
)

// Service creates and amends clinical records. Records are authored by
// professionals, amendable by their author or an admin, and readable by the
// referenced patient. Attachment locators only ever grow.
type Service struct {
	repo            repository.RecordRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	engine          *authz.Engine
}

func NewService(
	repo repository.RecordRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	engine *authz.Engine,
) *Service {
	return &Service{
		repo:            repo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		engine:          engine,
	}
}

// Create writes a record authored by the acting professional. A referenced
// appointment must belong to the same patient/professional pair.
func (s *Service) Create(ctx context.Context, actor *authz.Actor, req *model.CreateRecordRequest) (*model.ClinicalRecord, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCreateRecord, authz.ResourceRef{
		ProfessionalID: actor.ProfileID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	if actor.Role() != model.RoleProfessional {
		// Authoring needs a professional profile to reference; admins
		// administer records but do not author them.
		return nil, apperror.Forbidden("records must be authored by a professional")
	}

	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}

	if req.AppointmentID != nil {
		appointment, err := s.appointmentRepo.Get(ctx, *req.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appointment.PatientID != req.PatientID || appointment.ProfessionalID != actor.ProfileID {
			return nil, apperror.Validation("appointment does not belong to this patient and professional", nil)
		}
	}

	record := &model.ClinicalRecord{
		Base:           model.NewBase(),
		PatientID:      req.PatientID,
		ProfessionalID: actor.ProfileID,
		AppointmentID:  req.AppointmentID,
		ChiefComplaint: req.ChiefComplaint,
		PresentIllness: req.PresentIllness,
		PhysicalExam:   req.PhysicalExam,
		Diagnosis:      req.Diagnosis,
		Prescription:   req.Prescription,
		Notes:          req.Notes,
		Attachments:    req.Attachments,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Amend overwrites set fields and appends new attachments. Only the
// authoring professional or an admin may amend; patients never can.
func (s *Service) Amend(ctx context.Context, actor *authz.Actor, id uuid.UUID, req *model.AmendRecordRequest) (*model.ClinicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionUpdateRecord, authz.ResourceRef{
		PatientID:      record.PatientID,
		ProfessionalID: record.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	req.Apply(record)
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Read returns a record to its patient, its author or an admin. Ownership
// mismatch is denied outright so record ids cannot be probed.
func (s *Service) Read(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.ClinicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionReadRecord, authz.ResourceRef{
		PatientID:      record.PatientID,
		ProfessionalID: record.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	return record, nil
}

// ListForPatient lists a patient's records. Patients may only request their
// own; professionals see only the records they authored.
func (s *Service) ListForPatient(ctx context.Context, actor *authz.Actor, patientID uuid.UUID, page model.Pagination) ([]*model.ClinicalRecord, error) {
	professionalScope := uuid.Nil
	if actor.Role() == model.RoleProfessional {
		professionalScope = actor.ProfileID
	}

	if decision := s.engine.Authorize(actor, authz.ActionListRecords, authz.ResourceRef{
		PatientID:      patientID,
		ProfessionalID: professionalScope,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	return s.repo.List(ctx, patientID, professionalScope, &page)
}
