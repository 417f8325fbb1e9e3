package notification

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/circuitbreaker"
)

// Mailer emails both parties of an appointment on confirmation,
// cancellation and upcoming reminders. Delivery is best effort; callers
// log failures and move on. A circuit breaker keeps a dead SMTP relay
// from stalling every lifecycle transition.
type Mailer struct {
	dialer           *gomail.Dialer
	from             string
	breaker          *circuitbreaker.CircuitBreaker
	accountRepo      repository.AccountRepository
	patientRepo      repository.PatientRepository
	professionalRepo repository.ProfessionalRepository
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewMailer(
	cfg SMTPConfig,
	accountRepo repository.AccountRepository,
	patientRepo repository.PatientRepository,
	professionalRepo repository.ProfessionalRepository,
) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 5,
			Timeout:     time.Minute,
		}),
		accountRepo:      accountRepo,
		patientRepo:      patientRepo,
		professionalRepo: professionalRepo,
	}
}

func (m *Mailer) AppointmentConfirmed(ctx context.Context, appointment *model.Appointment) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf("Your appointment on %s is confirmed.",
		appointment.ScheduledAt.Format("02 Jan 2006 15:04"))
	if appointment.TelemedicineLink != nil {
		body += fmt.Sprintf(" Join at: %s", *appointment.TelemedicineLink)
	}
	return m.sendToParticipants(ctx, appointment, subject, body)
}

func (m *Mailer) AppointmentCancelled(ctx context.Context, appointment *model.Appointment) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf("Your appointment on %s has been cancelled.",
		appointment.ScheduledAt.Format("02 Jan 2006 15:04"))
	return m.sendToParticipants(ctx, appointment, subject, body)
}

func (m *Mailer) AppointmentReminder(ctx context.Context, appointment *model.Appointment) error {
	subject := "Appointment reminder"
	body := fmt.Sprintf("You have an upcoming appointment on %s.",
		appointment.ScheduledAt.Format("02 Jan 2006 15:04"))
	if appointment.TelemedicineLink != nil {
		body += fmt.Sprintf(" Join at: %s", *appointment.TelemedicineLink)
	}
	return m.sendToParticipants(ctx, appointment, subject, body)
}

func (m *Mailer) sendToParticipants(ctx context.Context, appointment *model.Appointment, subject, body string) error {
	recipients, err := m.participantEmails(ctx, appointment)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	err = m.breaker.Execute(func() error {
		return m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

func (m *Mailer) participantEmails(ctx context.Context, appointment *model.Appointment) ([]string, error) {
	patient, err := m.patientRepo.Get(ctx, appointment.PatientID)
	if err != nil {
		return nil, err
	}
	professional, err := m.professionalRepo.Get(ctx, appointment.ProfessionalID)
	if err != nil {
		return nil, err
	}

	patientAccount, err := m.accountRepo.Get(ctx, patient.AccountID)
	if err != nil {
		return nil, err
	}
	professionalAccount, err := m.accountRepo.Get(ctx, professional.AccountID)
	if err != nil {
		return nil, err
	}
	return []string{patientAccount.Email, professionalAccount.Email}, nil
}

// Discard is a no-op notifier for deployments without an SMTP relay.
type Discard struct{}

func (Discard) AppointmentConfirmed(context.Context, *model.Appointment) error { return nil }
func (Discard) AppointmentCancelled(context.Context, *model.Appointment) error { return nil }
func (Discard) AppointmentReminder(context.Context, *model.Appointment) error  { return nil }
