package services

import (
	"context"
	"fmt"

	"llmsaas/internal/common"
	"llmsaas/internal/llm"
	"llmsaas/internal/models"
	"llmsaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxPromptLength = 8000

type MessageService interface {
	// Create calls the LLM, persists the exchange and returns the stored
	// message. The tenant id is always copied from the authenticated user,
	// never from client input.
	Create(ctx context.Context, user *models.User, content string) (*models.Message, error)

	// Stream opens a fragment stream for the prompt. Streamed exchanges are
	// not persisted; that is a product decision, not an omission.
	Stream(ctx context.Context, user *models.User, content string) (<-chan string, error)

	// List returns one tenant-scoped page, newest first, plus the total row
	// count for pagination metadata.
	List(ctx context.Context, user *models.User, skip, limit int) (int64, []*models.Message, error)
}

type messageService struct {
	messageRepo repositories.MessageRepository
	gateway     llm.Gateway
	logger      *zap.Logger
}

func NewMessageService(messageRepo repositories.MessageRepository, gateway llm.Gateway, logger *zap.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

func validatePrompt(content string) error {
	if content == "" {
		return fmt.Errorf("content is required: %w", common.ErrInvalid)
	}
	if len(content) > maxPromptLength {
		return fmt.Errorf("content exceeds %d characters: %w", maxPromptLength, common.ErrInvalid)
	}
	return nil
}

func (s *messageService) Create(ctx context.Context, user *models.User, content string) (*models.Message, error) {
	if err := validatePrompt(content); err != nil {
		return nil, err
	}

	s.logger.Info("generating llm response",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.Int("prompt_length", len(content)))

	response, err := s.gateway.Generate(ctx, content, user.TenantID, user.ID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:       uuid.New(),
		TenantID: user.TenantID, // Sourced from the auth context, never the client
		UserID:   user.ID,
		Content:  content,
		Response: response,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.logger.Info("message stored",
		zap.String("message_id", message.ID.String()),
		zap.String("tenant_id", user.TenantID.String()))
	return message, nil
}

func (s *messageService) Stream(ctx context.Context, user *models.User, content string) (<-chan string, error) {
	if err := validatePrompt(content); err != nil {
		return nil, err
	}
	return s.gateway.GenerateStream(ctx, content, user.TenantID, user.ID)
}

func (s *messageService) List(ctx context.Context, user *models.User, skip, limit int) (int64, []*models.Message, error) {
	skip, limit = common.ValidatePaginationParams(skip, limit)

	total, err := s.messageRepo.CountByTenant(ctx, user.TenantID)
	if err != nil {
		return 0, nil, err
	}
	messages, err := s.messageRepo.ListByTenant(ctx, user.TenantID, limit, skip)
	if err != nil {
		return 0, nil, err
	}
	return total, messages, nil
}
