// Package llm abstracts the inference backend. A single Gateway interface is
// served by either the deterministic mock (no credential configured) or the
// OpenAI client; the choice is made once at startup by NewGateway.
package llm

import (
	"context"

	"llmsaas/internal/config"
	"llmsaas/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Gateway interface {
	// Generate performs one synchronous completion. Provider failures wrap
	// common.ErrUpstream.
	Generate(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (string, error)

	// GenerateStream returns a finite, non-restartable sequence of text
	// fragments. The channel is closed after the last fragment; the closed
	// channel is the end-of-stream marker, distinct from any fragment.
	// The gateway accumulates the full text internally and records one
	// telemetry event when the stream is exhausted. If ctx is canceled the
	// stream stops early and the telemetry tail is skipped.
	GenerateStream(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (<-chan string, error)
}

// NewGateway picks the backend once, at process start: live when a provider
// credential is configured, mock otherwise.
func NewGateway(cfg config.LLMConfig, sink telemetry.Sink, logger *zap.Logger) Gateway {
	if cfg.APIKey == "" {
		logger.Info("llm gateway in mock mode; set OPENAI_API_KEY for live inference")
		return NewMockGateway(sink, logger)
	}
	logger.Info("llm gateway in live mode", zap.String("model", cfg.Model))
	return NewOpenAIGateway(cfg, sink, logger)
}
