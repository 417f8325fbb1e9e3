package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

const appointmentColumns = `
	id, patient_id, professional_id, scheduled_at, modality, status,
	notes, telemedicine_link, reminder_sent_at, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.ProfessionalID,
		appointment.ScheduledAt,
		appointment.Modality,
		appointment.Status,
		appointment.Notes,
		appointment.TelemedicineLink,
		appointment.ReminderSentAt,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if nf := notFoundFrom(err, "appointment"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// Mutate applies fn to the appointment row under FOR UPDATE so that two
// concurrent transitions on the same appointment serialize; the loser
// observes the winner's state.
func (r *appointmentRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Appointment) error) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &appointment, query, id); err != nil {
			if nf := notFoundFrom(err, "appointment"); nf != nil {
				return nf
			}
			return fmt.Errorf("failed to lock appointment: %w", err)
		}

		if err := fn(&appointment); err != nil {
			return err
		}

		appointment.UpdatedAt = time.Now()
		update := `
			UPDATE appointments
			SET status = $1, notes = $2, telemedicine_link = $3, updated_at = $4
			WHERE id = $5
		`
		_, err := tx.ExecContext(ctx, update,
			appointment.Status,
			appointment.Notes,
			appointment.TelemedicineLink,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// DueForReminder returns confirmed appointments starting between now and
// until that have not yet been reminded.
func (r *appointmentRepository) DueForReminder(ctx context.Context, until time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = $1
		  AND scheduled_at > NOW()
		  AND scheduled_at <= $2
		  AND reminder_sent_at IS NULL
		ORDER BY scheduled_at ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, model.AppointmentStatusConfirmed, until); err != nil {
		return nil, fmt.Errorf("failed to list appointments due for reminder: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE appointments SET reminder_sent_at = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark appointment reminded: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.ProfessionalID != uuid.Nil {
		query += fmt.Sprintf(" AND professional_id = $%d", argCount)
		args = append(args, filters.ProfessionalID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.From.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argCount)
		args = append(args, filters.From)
		argCount++
	}
	if !filters.To.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argCount)
		args = append(args, filters.To)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit(), filters.Offset())

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
