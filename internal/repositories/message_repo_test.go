package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"llmsaas/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MessageRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     MessageRepository
	tenantID uuid.UUID
	userID   uuid.UUID
	ctx      context.Context
}

func (suite *MessageRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewMessageRepo(mock)
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *MessageRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestMessageRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MessageRepoTestSuite))
}

func (suite *MessageRepoTestSuite) TestCreate_Success() {
	message := &models.Message{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		UserID:   suite.userID,
		Content:  "hello",
		Response: "hi there",
	}

	suite.mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(message.ID, message.TenantID, message.UserID, message.Content, message.Response).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, message)
	assert.NoError(suite.T(), err)
}

func (suite *MessageRepoTestSuite) TestCreate_DatabaseError() {
	message := &models.Message{ID: uuid.New(), TenantID: suite.tenantID, UserID: suite.userID}

	suite.mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(message.ID, message.TenantID, message.UserID, message.Content, message.Response).
		WillReturnError(errors.New("connection refused"))

	err := suite.repo.Create(suite.ctx, message)
	assert.Error(suite.T(), err)
}

func (suite *MessageRepoTestSuite) TestListByTenant_PagesNewestFirst() {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "user_id", "content", "response", "created_at"}).
		AddRow(uuid.New(), suite.tenantID, suite.userID, "second", "reply 2", now).
		AddRow(uuid.New(), suite.tenantID, suite.userID, "first", "reply 1", now.Add(-time.Minute))

	suite.mock.ExpectQuery(`SELECT id, tenant_id, user_id, content, response, created_at`).
		WithArgs(suite.tenantID, 20, 0).
		WillReturnRows(rows)

	messages, err := suite.repo.ListByTenant(suite.ctx, suite.tenantID, 20, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), messages, 2)
	assert.Equal(suite.T(), "second", messages[0].Content)
}

func (suite *MessageRepoTestSuite) TestListByTenant_OffsetPropagates() {
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "user_id", "content", "response", "created_at"})

	suite.mock.ExpectQuery(`SELECT id, tenant_id, user_id, content, response, created_at`).
		WithArgs(suite.tenantID, 10, 40).
		WillReturnRows(rows)

	messages, err := suite.repo.ListByTenant(suite.ctx, suite.tenantID, 10, 40)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), messages)
}

func (suite *MessageRepoTestSuite) TestCountByTenant() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages WHERE tenant_id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	total, err := suite.repo.CountByTenant(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(42), total)
}
