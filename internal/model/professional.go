package model

import (
	"github.com/google/uuid"
)

// Specialty is a closed set of medical specialties.
type Specialty string

const (
	SpecialtyGeneralPractice Specialty = "general_practice"
	SpecialtyCardiology      Specialty = "cardiology"
	SpecialtyDermatology     Specialty = "dermatology"
	SpecialtyPediatrics      Specialty = "pediatrics"
	SpecialtyGynecology      Specialty = "gynecology"
	SpecialtyOrthopedics     Specialty = "orthopedics"
	SpecialtyPsychiatry      Specialty = "psychiatry"
	SpecialtyNeurology       Specialty = "neurology"
)

func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyGeneralPractice, SpecialtyCardiology, SpecialtyDermatology,
		SpecialtyPediatrics, SpecialtyGynecology, SpecialtyOrthopedics,
		SpecialtyPsychiatry, SpecialtyNeurology:
		return true
	}
	return false
}

// ProfessionalProfile is owned 1:1 by an account with RoleProfessional.
// The license number is a natural key. Schedule is structured but opaque here.
type ProfessionalProfile struct {
	Base
	AccountID     uuid.UUID `db:"account_id" json:"account_id"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Specialty     Specialty `db:"specialty" json:"specialty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	Schedule      string    `db:"schedule" json:"schedule,omitempty"`
}

type UpdateProfessionalRequest struct {
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Schedule *string `json:"schedule" validate:"omitempty,max=1024"`
}

func (r *UpdateProfessionalRequest) Apply(p *ProfessionalProfile) {
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Schedule != nil {
		p.Schedule = *r.Schedule
	}
}

// ProfessionalFilters narrows the public directory listing.
type ProfessionalFilters struct {
	Specialty Specialty `form:"specialty"`
	Pagination
}
