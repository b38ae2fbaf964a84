package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one persisted prompt/response exchange. TenantID is denormalized
// from the owning user at write time so tenant-scoped listings never need a
// join; users never move tenants, so the copy cannot go stale.
type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	Response  string    `json:"response" db:"response"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
