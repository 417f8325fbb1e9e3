package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile is owned 1:1 by an account with RolePatient. The national id
// is a natural key and never reused, even after the account is deactivated.
type PatientProfile struct {
	Base
	AccountID        uuid.UUID  `db:"account_id" json:"account_id"`
	NationalID       string     `db:"national_id" json:"national_id"`
	DocumentID       string     `db:"document_id" json:"document_id,omitempty"`
	BirthDate        *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone            string     `db:"phone" json:"phone,omitempty"`
	Address          string     `db:"address" json:"address,omitempty"`
	EmergencyContact string     `db:"emergency_contact" json:"emergency_contact,omitempty"`
	InsurancePlan    string     `db:"insurance_plan" json:"insurance_plan,omitempty"`
	InsuranceCardNo  string     `db:"insurance_card_number" json:"insurance_card_number,omitempty"`
}

type UpdatePatientRequest struct {
	Phone            *string    `json:"phone" validate:"omitempty,max=20"`
	Address          *string    `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string    `json:"emergency_contact" validate:"omitempty,max=255"`
	InsurancePlan    *string    `json:"insurance_plan" validate:"omitempty,max=100"`
	InsuranceCardNo  *string    `json:"insurance_card_number" validate:"omitempty,max=50"`
	BirthDate        *time.Time `json:"birth_date"`
}

// Apply copies the set fields onto the profile.
func (r *UpdatePatientRequest) Apply(p *PatientProfile) {
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Address != nil {
		p.Address = *r.Address
	}
	if r.EmergencyContact != nil {
		p.EmergencyContact = *r.EmergencyContact
	}
	if r.InsurancePlan != nil {
		p.InsurancePlan = *r.InsurancePlan
	}
	if r.InsuranceCardNo != nil {
		p.InsuranceCardNo = *r.InsuranceCardNo
	}
	if r.BirthDate != nil {
		p.BirthDate = r.BirthDate
	}
}
