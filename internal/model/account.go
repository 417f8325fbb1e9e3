package model

import (
	"time"

	"github.com/google/uuid"
)

// Role tags an account with exactly one actor kind. It is immutable after
// registration and must agree with the kind of the account's profile.
type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	Active       bool   `db:"active" json:"active"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type RegisterPatientRequest struct {
	Name             string     `json:"name" validate:"required,max=255"`
	Email            string     `json:"email" validate:"required,email"`
	Password         string     `json:"password" validate:"required,min=8"`
	NationalID       string     `json:"national_id" validate:"required,max=14"`
	DocumentID       string     `json:"document_id" validate:"max=20"`
	BirthDate        *time.Time `json:"birth_date"`
	Phone            string     `json:"phone" validate:"max=20"`
	Address          string     `json:"address" validate:"max=500"`
	EmergencyContact string     `json:"emergency_contact" validate:"max=255"`
	InsurancePlan    string     `json:"insurance_plan" validate:"max=100"`
	InsuranceCardNo  string     `json:"insurance_card_number" validate:"max=50"`
}

type RegisterProfessionalRequest struct {
	Name          string    `json:"name" validate:"required,max=255"`
	Email         string    `json:"email" validate:"required,email"`
	Password      string    `json:"password" validate:"required,min=8"`
	LicenseNumber string    `json:"license_number" validate:"required,max=20"`
	Specialty     Specialty `json:"specialty" validate:"required"`
	Phone         string    `json:"phone" validate:"max=20"`
	Schedule      string    `json:"schedule" validate:"max=1024"`
}

type RegisterAdminRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Department  string   `json:"department" validate:"max=100"`
	Permissions []string `json:"permissions"`
}

// RegisteredAccount pairs an account with the profile id created alongside it.
type RegisteredAccount struct {
	Account   *Account  `json:"account"`
	ProfileID uuid.UUID `json:"profile_id"`
}
