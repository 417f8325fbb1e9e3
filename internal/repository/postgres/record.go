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

type recordRepository struct {
	BaseRepository
}

func NewRecordRepository(db *sqlx.DB) repository.RecordRepository {
	return &recordRepository{BaseRepository: NewBaseRepository(db)}
}

const recordColumns = `
	id, patient_id, professional_id, appointment_id, chief_complaint,
	present_illness, physical_exam, diagnosis, prescription, notes,
	attachments, created_at, updated_at
`

func (r *recordRepository) Create(ctx context.Context, record *model.ClinicalRecord) error {
	query := `
		INSERT INTO clinical_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.ProfessionalID,
		record.AppointmentID,
		record.ChiefComplaint,
		record.PresentIllness,
		record.PhysicalExam,
		record.Diagnosis,
		record.Prescription,
		record.Notes,
		record.Attachments,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical record: %w", err)
	}
	return nil
}

func (r *recordRepository) Get(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM clinical_records WHERE id = $1`
	var record model.ClinicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if nf := notFoundFrom(err, "clinical record"); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get clinical record: %w", err)
	}
	return &record, nil
}

func (r *recordRepository) Update(ctx context.Context, record *model.ClinicalRecord) error {
	query := `
		UPDATE clinical_records
		SET chief_complaint = $1, present_illness = $2, physical_exam = $3,
			diagnosis = $4, prescription = $5, notes = $6, attachments = $7,
			updated_at = $8
		WHERE id = $9
	`
	record.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		record.ChiefComplaint,
		record.PresentIllness,
		record.PhysicalExam,
		record.Diagnosis,
		record.Prescription,
		record.Notes,
		record.Attachments,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinical record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("clinical record")
	}
	return nil
}

func (r *recordRepository) List(ctx context.Context, patientID, professionalID uuid.UUID, page *model.Pagination) ([]*model.ClinicalRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM clinical_records WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if patientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, patientID)
		argCount++
	}
	if professionalID != uuid.Nil {
		query += fmt.Sprintf(" AND professional_id = $%d", argCount)
		args = append(args, professionalID)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, page.Limit(), page.Offset())

	var records []*model.ClinicalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clinical records: %w", err)
	}
	return records, nil
}
