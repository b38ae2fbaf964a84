package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"llmsaas/internal/common"
	"llmsaas/internal/models"
	"llmsaas/internal/services"

	"github.com/labstack/echo/v4"
)

// streamDoneSentinel terminates the SSE stream. It is written exactly once,
// after the last fragment, and is never a fragment itself.
const streamDoneSentinel = "[DONE]"

type MessageHandlers struct {
	messageSvc services.MessageService
}

func NewMessageHandlers(messageSvc services.MessageService) *MessageHandlers {
	return &MessageHandlers{messageSvc: messageSvc}
}

type CreateMessageRequest struct {
	Content string `json:"content"`
}

type MessageListResponse struct {
	Total int64             `json:"total"`
	Items []*models.Message `json:"items"`
}

// queryInt parses an optional integer query parameter. Absent means zero;
// non-numeric values are a client error, not a silent zero.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return value, nil
}

// SendMessage sends a prompt to the LLM, persists the exchange, and returns
// the stored message including the full response.
func (h *MessageHandlers) SendMessage(c echo.Context) error {
	user, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	message, err := h.messageSvc.Create(c.Request().Context(), user, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, message)
}

// ListMessages returns one page of the tenant's messages, newest first, with
// the total count for pagination.
func (h *MessageHandlers) ListMessages(c echo.Context) error {
	user, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	skip, err := queryInt(c, "skip")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	total, messages, err := h.messageSvc.List(c.Request().Context(), user, skip, limit)
	if err != nil {
		return httpError(err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return c.JSON(http.StatusOK, MessageListResponse{Total: total, Items: messages})
}

// StreamMessage streams the LLM response as Server-Sent Events: one
// `data: <fragment>` event per fragment, then a terminal `data: [DONE]`.
// Streamed exchanges are not persisted; clients that need history use
// POST /messages.
func (h *MessageHandlers) StreamMessage(c echo.Context) error {
	user, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	content := c.QueryParam("content")
	fragments, err := h.messageSvc.Stream(c.Request().Context(), user, content)
	if err != nil {
		return httpError(err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	// Disable proxy buffering; without this, streaming silently degrades to
	// one buffered response behind nginx.
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			// Client disconnected; the gateway sees the same cancellation
			// and stops producing.
			return nil
		case fragment, open := <-fragments:
			if !open {
				if _, err := fmt.Fprintf(res, "data: %s\n\n", streamDoneSentinel); err != nil {
					return nil
				}
				res.Flush()
				return nil
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", fragment); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
