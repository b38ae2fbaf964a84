package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated organizational unit. Every user and message belongs
// to exactly one tenant, and all queries over those rows are scoped by
// tenant_id at the SQL level.
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
