package repositories

import (
	"context"

	"llmsaas/internal/models"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Message, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db Database
}

func NewMessageRepo(db Database) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, tenant_id, user_id, content, response, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, message.ID, message.TenantID, message.UserID, message.Content, message.Response)
	return err
}

func (r *messageRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT id, tenant_id, user_id, content, response, created_at
		FROM messages
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{}
		if err := rows.Scan(&message.ID, &message.TenantID, &message.UserID, &message.Content, &message.Response, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *messageRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	query := `SELECT COUNT(*) FROM messages WHERE tenant_id = $1`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&total)
	return total, err
}
