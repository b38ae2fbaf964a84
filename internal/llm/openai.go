package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"llmsaas/internal/common"
	"llmsaas/internal/config"
	"llmsaas/internal/telemetry"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a helpful AI assistant."

// OpenAIGateway forwards prompts to the OpenAI chat-completions API. Model,
// token limit and temperature come from process configuration.
type OpenAIGateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	sink        telemetry.Sink
	logger      *zap.Logger
}

func NewOpenAIGateway(cfg config.LLMConfig, sink telemetry.Sink, logger *zap.Logger) *OpenAIGateway {
	return &OpenAIGateway{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		sink:        sink,
		logger:      logger,
	}
}

func (g *OpenAIGateway) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
}

func (g *OpenAIGateway) Generate(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (string, error) {
	start := time.Now()

	completion, err := g.client.CreateChatCompletion(ctx, g.request(prompt))
	if err != nil {
		g.logger.Error("openai completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	var response string
	if len(completion.Choices) > 0 {
		response = completion.Choices[0].Message.Content
	}

	g.sink.Record(ctx, telemetry.Event{
		TenantID:      tenantID,
		UserID:        userID,
		Model:         g.model,
		PromptChars:   len(prompt),
		ResponseChars: len(response),
		LatencyMS:     float64(time.Since(start).Microseconds()) / 1000,
	})
	return response, nil
}

func (g *OpenAIGateway) GenerateStream(ctx context.Context, prompt string, tenantID, userID uuid.UUID) (<-chan string, error) {
	start := time.Now()

	req := g.request(prompt)
	req.Stream = true
	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		g.logger.Error("openai stream open failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer stream.Close()
		var full strings.Builder

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					// Client disconnect; skip the telemetry tail.
					return
				}
				g.logger.Error("openai stream receive failed", zap.Error(err))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			fragment := chunk.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}

			select {
			case out <- fragment:
				full.WriteString(fragment)
			case <-ctx.Done():
				return
			}
		}

		g.sink.Record(ctx, telemetry.Event{
			TenantID:      tenantID,
			UserID:        userID,
			Model:         g.model,
			PromptChars:   len(prompt),
			ResponseChars: full.Len(),
			LatencyMS:     float64(time.Since(start).Microseconds()) / 1000,
			Streamed:      true,
		})
	}()

	return out, nil
}
