package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusInProgress, AppointmentStatusCompleted,
		AppointmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type Modality string

const (
	ModalityInPerson     Modality = "in_person"
	ModalityTelemedicine Modality = "telemedicine"
)

func (m Modality) Valid() bool {
	return m == ModalityInPerson || m == ModalityTelemedicine
}

// Appointment references exactly one patient profile and one professional
// profile. TelemedicineLink is set once, when a telemedicine appointment is
// confirmed, and never regenerated.
type Appointment struct {
	Base
	PatientID        uuid.UUID         `db:"patient_id" json:"patient_id"`
	ProfessionalID   uuid.UUID         `db:"professional_id" json:"professional_id"`
	ScheduledAt      time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Modality         Modality          `db:"modality" json:"modality"`
	Status           AppointmentStatus `db:"status" json:"status"`
	Notes            string            `db:"notes" json:"notes,omitempty"`
	TelemedicineLink *string           `db:"telemedicine_link" json:"telemedicine_link,omitempty"`
	ReminderSentAt   *time.Time        `db:"reminder_sent_at" json:"-"`
}

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID `json:"patient_id" validate:"required"`
	ProfessionalID uuid.UUID `json:"professional_id" validate:"required"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	Modality       Modality  `json:"modality" validate:"required,oneof=in_person telemedicine"`
	Notes          string    `json:"notes" validate:"max=1000"`
}

type TransitionAppointmentRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
	Notes  *string           `json:"notes" validate:"omitempty,max=1000"`
}

type AppointmentFilters struct {
	PatientID      uuid.UUID         `form:"patient_id"`
	ProfessionalID uuid.UUID         `form:"professional_id"`
	Status         AppointmentStatus `form:"status"`
	From           time.Time         `form:"from"`
	To             time.Time         `form:"to"`
	Pagination
}
