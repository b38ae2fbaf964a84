package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llmsaas/internal/common"
	"llmsaas/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Create(ctx context.Context, user *models.User, content string) (*models.Message, error) {
	args := m.Called(ctx, user, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) Stream(ctx context.Context, user *models.User, content string) (<-chan string, error) {
	args := m.Called(ctx, user, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan string), args.Error(1)
}

func (m *MockMessageService) List(ctx context.Context, user *models.User, skip, limit int) (int64, []*models.Message, error) {
	args := m.Called(ctx, user, skip, limit)
	if args.Get(1) == nil {
		return args.Get(0).(int64), nil, args.Error(2)
	}
	return args.Get(0).(int64), args.Get(1).([]*models.Message), args.Error(2)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, user *models.User) echo.Context {
	req = req.WithContext(common.WithUser(req.Context(), user))
	return e.NewContext(req, rec)
}

func messageTestUser() *models.User {
	return &models.User{ID: uuid.New(), TenantID: uuid.New(), Email: "bob@example.com", Role: models.RoleUser}
}

func TestSendMessage_Success(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	stored := &models.Message{
		ID:       uuid.New(),
		TenantID: user.TenantID,
		UserID:   user.ID,
		Content:  "hello",
		Response: "hi there",
	}
	svc.On("Create", mock.Anything, user, "hello").Return(stored, nil)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/messages", `{"content":"hello"}`)
	rec := httptest.NewRecorder()

	err := h.SendMessage(authedContext(e, req, rec, user))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stored.Response, got.Response)
	assert.Equal(t, user.TenantID, got.TenantID)
	svc.AssertExpectations(t)
}

func TestSendMessage_Unauthenticated(t *testing.T) {
	h := NewMessageHandlers(&MockMessageService{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/messages", `{"content":"hello"}`)
	rec := httptest.NewRecorder()

	err := h.SendMessage(e.NewContext(req, rec))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestSendMessage_UpstreamFailure(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	svc.On("Create", mock.Anything, user, "hello").Return(nil, common.ErrUpstream)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/messages", `{"content":"hello"}`)
	rec := httptest.NewRecorder()

	err := h.SendMessage(authedContext(e, req, rec, user))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
}

func TestListMessages_PassesPagination(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	items := []*models.Message{
		{ID: uuid.New(), TenantID: user.TenantID, Content: "newest"},
		{ID: uuid.New(), TenantID: user.TenantID, Content: "older"},
	}
	svc.On("List", mock.Anything, user, 5, 2).Return(int64(42), items, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/messages?skip=5&limit=2", nil)
	rec := httptest.NewRecorder()

	err := h.ListMessages(authedContext(e, req, rec, user))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got MessageListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.Total)
	assert.Len(t, got.Items, 2)
	svc.AssertExpectations(t)
}

func TestListMessages_EmptyPageIsArray(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	svc.On("List", mock.Anything, user, 0, 0).Return(int64(0), []*models.Message(nil), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()

	err := h.ListMessages(authedContext(e, req, rec, user))
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestListMessages_RejectsNonNumericPagination(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	for _, target := range []string{"/messages?skip=abc", "/messages?limit=xyz"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		err := h.ListMessages(authedContext(e, req, rec, user))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, target)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code, target)
	}
	// Bad input never reaches the service.
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// stalledMessageService blocks until the request context expires, standing in
// for a query stuck behind an exhausted connection pool.
type stalledMessageService struct{}

func (stalledMessageService) Create(ctx context.Context, _ *models.User, _ string) (*models.Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledMessageService) Stream(context.Context, *models.User, string) (<-chan string, error) {
	return nil, context.Canceled
}

func (stalledMessageService) List(ctx context.Context, _ *models.User, _, _ int) (int64, []*models.Message, error) {
	<-ctx.Done()
	return 0, nil, ctx.Err()
}

// A request whose deadline expires while the service is still waiting must
// come back as 503, not queue indefinitely.
func TestSendMessage_DeadlineSurfacesAsServiceUnavailable(t *testing.T) {
	h := NewMessageHandlers(stalledMessageService{})
	user := messageTestUser()

	e := echo.New()
	e.POST("/messages", func(c echo.Context) error {
		c.SetRequest(c.Request().WithContext(common.WithUser(c.Request().Context(), user)))
		return h.SendMessage(c)
	}, echoMiddleware.ContextTimeoutWithConfig(echoMiddleware.ContextTimeoutConfig{
		Timeout: 20 * time.Millisecond,
	}))

	req := jsonRequest(http.MethodPost, "/messages", `{"content":"hello"}`)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamMessage_EmitsFragmentsAndDone(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	fragments := make(chan string, 3)
	fragments <- "Hello "
	fragments <- "streaming "
	fragments <- "world"
	close(fragments)

	svc.On("Stream", mock.Anything, user, "hi").Return((<-chan string)(fragments), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/messages/stream?content=hi", nil)
	rec := httptest.NewRecorder()

	err := h.StreamMessage(authedContext(e, req, rec, user))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache", rec.Header().Get(echo.HeaderCacheControl))

	body := rec.Body.String()
	assert.Contains(t, body, "data: Hello \n\n")
	assert.Contains(t, body, "data: streaming \n\n")
	assert.Contains(t, body, "data: world\n\n")

	// Exactly one terminal marker, after the last fragment.
	assert.Equal(t, 1, strings.Count(body, "data: [DONE]\n\n"))
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}

func TestStreamMessage_ValidationFailsBeforeStreaming(t *testing.T) {
	svc := &MockMessageService{}
	svc.Test(t)
	h := NewMessageHandlers(svc)
	user := messageTestUser()

	svc.On("Stream", mock.Anything, user, "").Return(nil, assert.AnError)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/messages/stream", nil)
	rec := httptest.NewRecorder()

	err := h.StreamMessage(authedContext(e, req, rec, user))
	require.Error(t, err)
	assert.NotContains(t, rec.Body.String(), "[DONE]")
}
