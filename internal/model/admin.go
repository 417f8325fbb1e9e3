package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AdminProfile is owned 1:1 by an account with RoleAdmin. Creating one
// requires an existing admin actor; the first admin is seeded externally.
type AdminProfile struct {
	Base
	AccountID   uuid.UUID      `db:"account_id" json:"account_id"`
	Department  string         `db:"department" json:"department,omitempty"`
	Permissions pq.StringArray `db:"permissions" json:"permissions,omitempty"`
}
