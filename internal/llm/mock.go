package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"llmsaas/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockTokenDelay simulates provider pacing so streaming consumers see
// realistic incremental delivery in development and tests.
const mockTokenDelay = 50 * time.Millisecond

// MockGateway is the no-dependency backend: deterministic output, artificial
// pacing on the streaming path. Stream fragments concatenate to exactly the
// synchronous response for the same prompt.
type MockGateway struct {
	sink       telemetry.Sink
	logger     *zap.Logger
	tokenDelay time.Duration
}

func NewMockGateway(sink telemetry.Sink, logger *zap.Logger) *MockGateway {
	return &MockGateway{sink: sink, logger: logger, tokenDelay: mockTokenDelay}
}

func mockResponse(prompt string) string {
	truncated := prompt
	suffix := ""
	// Truncate by runes, not bytes, so a multi-byte character at the cut
	// point is never split into invalid UTF-8.
	if runes := []rune(prompt); len(runes) > 100 {
		truncated = string(runes[:100])
		suffix = "..."
	}
	return fmt.Sprintf(
		"[MOCK LLM RESPONSE]\n\nYou asked: '%s%s'\n\nThis is a simulated AI response. Set OPENAI_API_KEY to use a real model.",
		truncated, suffix,
	)
}

func (g *MockGateway) Generate(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (string, error) {
	start := time.Now()
	response := mockResponse(prompt)

	g.sink.Record(ctx, telemetry.Event{
		TenantID:      tenantID,
		UserID:        userID,
		Model:         "mock",
		PromptChars:   len(prompt),
		ResponseChars: len(response),
		LatencyMS:     float64(time.Since(start).Microseconds()) / 1000,
		Mock:          true,
	})
	return response, nil
}

func (g *MockGateway) GenerateStream(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (<-chan string, error) {
	fragments := splitFragments(mockResponse(prompt))
	out := make(chan string)

	go func() {
		defer close(out)
		start := time.Now()
		var full strings.Builder

		for _, fragment := range fragments {
			select {
			case <-ctx.Done():
				// Client went away; stop producing and skip telemetry.
				g.logger.Debug("mock stream canceled",
					zap.String("tenant_id", tenantID.String()))
				return
			case <-time.After(g.tokenDelay):
			}

			select {
			case out <- fragment:
				full.WriteString(fragment)
			case <-ctx.Done():
				g.logger.Debug("mock stream canceled",
					zap.String("tenant_id", tenantID.String()))
				return
			}
		}

		g.sink.Record(ctx, telemetry.Event{
			TenantID:      tenantID,
			UserID:        userID,
			Model:         "mock",
			PromptChars:   len(prompt),
			ResponseChars: full.Len(),
			LatencyMS:     float64(time.Since(start).Microseconds()) / 1000,
			Mock:          true,
			Streamed:      true,
		})
	}()

	return out, nil
}

// splitFragments chops a response into word-sized fragments whose
// concatenation reproduces the input exactly.
func splitFragments(s string) []string {
	parts := strings.SplitAfter(s, " ")
	fragments := parts[:0]
	for _, p := range parts {
		if p != "" {
			fragments = append(fragments, p)
		}
	}
	return fragments
}
