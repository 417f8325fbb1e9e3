package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/logger"
	"github.com/clinicore/clinic-api/pkg/telemed"
)

// Notifier delivers best-effort messages about lifecycle events. Failures
// are logged, never surfaced to the caller.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, appointment *model.Appointment) error
	AppointmentCancelled(ctx context.Context, appointment *model.Appointment) error
}

// Service owns the appointment state machine:
//
//	Scheduled -> Confirmed -> InProgress -> Completed
//	Scheduled/Confirmed -> Cancelled
//
// Completed and Cancelled are terminal. Every operation consults the
// authorization engine before the state-machine guard runs.
type Service struct {
	repo             repository.AppointmentRepository
	patientRepo      repository.PatientRepository
	professionalRepo repository.ProfessionalRepository
	engine           *authz.Engine
	links            telemed.LinkGenerator
	notifier         Notifier
	log              *logger.Logger

	now func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	professionalRepo repository.ProfessionalRepository,
	engine *authz.Engine,
	links telemed.LinkGenerator,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:             repo,
		patientRepo:      patientRepo,
		professionalRepo: professionalRepo,
		engine:           engine,
		links:            links,
		notifier:         notifier,
		log:              log,
		now:              time.Now,
	}
}

// Create schedules a new appointment. Both referenced profiles must exist
// and the scheduled timestamp must be in the future.
func (s *Service) Create(ctx context.Context, actor *authz.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCreateAppointment, authz.ResourceRef{
		PatientID:      req.PatientID,
		ProfessionalID: req.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.professionalRepo.Get(ctx, req.ProfessionalID); err != nil {
		return nil, err
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, apperror.InvalidSchedule("appointment must be scheduled in the future")
	}

	appointment := &model.Appointment{
		Base:           model.NewBase(),
		PatientID:      req.PatientID,
		ProfessionalID: req.ProfessionalID,
		ScheduledAt:    req.ScheduledAt,
		Modality:       req.Modality,
		Status:         model.AppointmentStatusScheduled,
		Notes:          req.Notes,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Get returns a single appointment, subject to the engine's visibility
// rules; a mismatch is a hard deny, not an empty result.
func (s *Service) Get(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionReadAppointment, authz.ResourceRef{
		PatientID:      appointment.PatientID,
		ProfessionalID: appointment.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}
	return appointment, nil
}

// List applies role scoping before hitting the store: patients see only
// their own appointments, professionals their own assignments, admins are
// unfiltered. This filtering is the one sanctioned place a mismatch turns
// into omission rather than denial.
func (s *Service) List(ctx context.Context, actor *authz.Actor, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	scoped := *filters
	switch actor.Role() {
	case model.RolePatient:
		scoped.PatientID = actor.ProfileID
	case model.RoleProfessional:
		scoped.ProfessionalID = actor.ProfileID
	}

	if decision := s.engine.Authorize(actor, authz.ActionListAppointments, authz.ResourceRef{
		PatientID:      scoped.PatientID,
		ProfessionalID: scoped.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	return s.repo.List(ctx, &scoped)
}

// HistoryForPatient returns a patient's appointment history. Patients may
// only request their own; professionals see the slice they are assigned to.
func (s *Service) HistoryForPatient(ctx context.Context, actor *authz.Actor, patientID uuid.UUID, page model.Pagination) ([]*model.Appointment, error) {
	filters := &model.AppointmentFilters{PatientID: patientID, Pagination: page}
	if actor.Role() == model.RoleProfessional {
		filters.ProfessionalID = actor.ProfileID
	}

	if decision := s.engine.Authorize(actor, authz.ActionListAppointments, authz.ResourceRef{
		PatientID:      patientID,
		ProfessionalID: filters.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	return s.repo.List(ctx, filters)
}

// Transition moves an appointment along a declared edge. Authorization is
// evaluated first; only then does the state-machine guard run. The mutation
// is atomic against the store.
func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id uuid.UUID, req *model.TransitionAppointmentRequest) (*model.Appointment, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("unknown appointment status", nil)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionUpdateAppointment, authz.ResourceRef{
		PatientID:      current.PatientID,
		ProfessionalID: current.ProfessionalID,
	}); !decision.Allowed {
		return nil, apperror.Forbidden(decision.Reason)
	}

	updated, err := s.repo.Mutate(ctx, id, func(appointment *model.Appointment) error {
		if err := s.applyTransition(actor, appointment, req.Status); err != nil {
			return err
		}
		if req.Notes != nil {
			appointment.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated)
	return updated, nil
}

// applyTransition enforces the edge set, per-edge trigger roles and timing
// guards, and runs the confirmation side effect.
func (s *Service) applyTransition(actor *authz.Actor, appointment *model.Appointment, target model.AppointmentStatus) error {
	from := appointment.Status

	switch {
	case from == model.AppointmentStatusScheduled && target == model.AppointmentStatusConfirmed,
		from == model.AppointmentStatusConfirmed && target == model.AppointmentStatusConfirmed:
		// Re-confirming is an idempotent no-op; an existing link is kept.
		if actor.Role() == model.RolePatient {
			return apperror.Forbidden("patients may not confirm appointments")
		}
		appointment.Status = model.AppointmentStatusConfirmed
		if appointment.Modality == model.ModalityTelemedicine && appointment.TelemedicineLink == nil {
			link := s.links.Generate(appointment.ID)
			appointment.TelemedicineLink = &link
		}
		return nil

	case from == model.AppointmentStatusConfirmed && target == model.AppointmentStatusInProgress:
		if actor.Role() != model.RoleProfessional {
			return apperror.Forbidden("only the assigned professional may start the appointment")
		}
		if s.now().Before(appointment.ScheduledAt) {
			return apperror.Forbidden("not yet time")
		}
		appointment.Status = model.AppointmentStatusInProgress
		return nil

	case from == model.AppointmentStatusInProgress && target == model.AppointmentStatusCompleted:
		if actor.Role() == model.RolePatient {
			return apperror.Forbidden("patients may not complete appointments")
		}
		appointment.Status = model.AppointmentStatusCompleted
		return nil

	case (from == model.AppointmentStatusScheduled || from == model.AppointmentStatusConfirmed) &&
		target == model.AppointmentStatusCancelled:
		// Assigned professional, owning patient or admin; ownership was
		// already checked by the engine.
		appointment.Status = model.AppointmentStatusCancelled
		return nil
	}

	return apperror.InvalidTransition(string(from), string(target))
}

func (s *Service) notify(ctx context.Context, appointment *model.Appointment) {
	if s.notifier == nil {
		return
	}
	var err error
	switch appointment.Status {
	case model.AppointmentStatusConfirmed:
		err = s.notifier.AppointmentConfirmed(ctx, appointment)
	case model.AppointmentStatusCancelled:
		err = s.notifier.AppointmentCancelled(ctx, appointment)
	}
	if err != nil {
		s.log.Error(err, "failed to send appointment notification",
			"appointment_id", appointment.ID.String())
	}
}
