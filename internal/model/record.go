package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ClinicalRecord references one patient and its authoring professional, and
// optionally the appointment it was written during. Attachments are
// append-only locators; removal is an archival concern outside this core.
type ClinicalRecord struct {
	Base
	PatientID       uuid.UUID      `db:"patient_id" json:"patient_id"`
	ProfessionalID  uuid.UUID      `db:"professional_id" json:"professional_id"`
	AppointmentID   *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	ChiefComplaint  string         `db:"chief_complaint" json:"chief_complaint,omitempty"`
	PresentIllness  string         `db:"present_illness" json:"present_illness,omitempty"`
	PhysicalExam    string         `db:"physical_exam" json:"physical_exam,omitempty"`
	Diagnosis       string         `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription    string         `db:"prescription" json:"prescription,omitempty"`
	Notes           string         `db:"notes" json:"notes,omitempty"`
	Attachments     pq.StringArray `db:"attachments" json:"attachments,omitempty"`
}

type CreateRecordRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID  *uuid.UUID `json:"appointment_id"`
	ChiefComplaint string     `json:"chief_complaint" validate:"max=4000"`
	PresentIllness string     `json:"present_illness" validate:"max=4000"`
	PhysicalExam   string     `json:"physical_exam" validate:"max=4000"`
	Diagnosis      string     `json:"diagnosis" validate:"max=4000"`
	Prescription   string     `json:"prescription" validate:"max=4000"`
	Notes          string     `json:"notes" validate:"max=4000"`
	Attachments    []string   `json:"attachments"`
}

// AmendRecordRequest overwrites set fields; attachments only ever grow.
type AmendRecordRequest struct {
	ChiefComplaint *string  `json:"chief_complaint" validate:"omitempty,max=4000"`
	PresentIllness *string  `json:"present_illness" validate:"omitempty,max=4000"`
	PhysicalExam   *string  `json:"physical_exam" validate:"omitempty,max=4000"`
	Diagnosis      *string  `json:"diagnosis" validate:"omitempty,max=4000"`
	Prescription   *string  `json:"prescription" validate:"omitempty,max=4000"`
	Notes          *string  `json:"notes" validate:"omitempty,max=4000"`
	NewAttachments []string `json:"new_attachments"`
}

func (r *AmendRecordRequest) Apply(rec *ClinicalRecord) {
	if r.ChiefComplaint != nil {
		rec.ChiefComplaint = *r.ChiefComplaint
	}
	if r.PresentIllness != nil {
		rec.PresentIllness = *r.PresentIllness
	}
	if r.PhysicalExam != nil {
		rec.PhysicalExam = *r.PhysicalExam
	}
	if r.Diagnosis != nil {
		rec.Diagnosis = *r.Diagnosis
	}
	if r.Prescription != nil {
		rec.Prescription = *r.Prescription
	}
	if r.Notes != nil {
		rec.Notes = *r.Notes
	}
	rec.Attachments = append(rec.Attachments, r.NewAttachments...)
}
