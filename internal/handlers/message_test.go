package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/formgate/formgate-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMessageTestApp(messageSvc *testutil.MockMessageService) http.Handler {
	handler := NewMessageHandler(messageSvc)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Get("/messages", handler.List)
	app.Get("/messages/:messageId", handler.Get)
	return app
}

func TestMessageHandler_List_Success(t *testing.T) {
	mockMessages := new(testutil.MockMessageService)
	app := newMessageTestApp(mockMessages)

	userID := uuid.New()
	now := time.Now()
	messages := []models.Message{
		{
			ID: uuid.New(), APIKeyID: uuid.New(), RecipientEmails: "a@example.com",
			VisitorEmail: "v@example.com", Subject: "Hello",
			Body: json.RawMessage(`{"message":"hi"}`), Status: models.MessageStatusSent,
			AcceptedAt: now, SentAt: &now,
		},
		{
			ID: uuid.New(), APIKeyID: uuid.New(), RecipientEmails: "a@example.com",
			VisitorEmail: "v@example.com", Subject: "Broken",
			Body: json.RawMessage(`{"message":"hi"}`), Status: models.MessageStatusFailed,
			Error: "smtp dial failed: connection refused", AcceptedAt: now, SentAt: &now,
		},
	}
	mockMessages.On("List", mock.Anything, userID, "").Return(messages, nil)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/messages",
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var response []dto.MessageResponse
	testutil.ParseJSON(t, rec, &response)
	require.Len(t, response, 2)
	assert.Equal(t, models.MessageStatusSent, response[0].Status)
	assert.Equal(t, models.MessageStatusFailed, response[1].Status)
	assert.NotEmpty(t, response[1].Error)

	mockMessages.AssertExpectations(t)
}

func TestMessageHandler_List_PassesSearch(t *testing.T) {
	mockMessages := new(testutil.MockMessageService)
	app := newMessageTestApp(mockMessages)

	userID := uuid.New()
	mockMessages.On("List", mock.Anything, userID, "failed").Return([]models.Message{}, nil)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/messages?search=failed",
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusOK)
	mockMessages.AssertExpectations(t)
}

func TestMessageHandler_Get_Success(t *testing.T) {
	mockMessages := new(testutil.MockMessageService)
	app := newMessageTestApp(mockMessages)

	userID := uuid.New()
	msgID := uuid.New()
	now := time.Now()
	msg := &models.Message{
		ID: msgID, APIKeyID: uuid.New(), RecipientEmails: "a@example.com",
		VisitorEmail: "v@example.com", Subject: "Hello",
		Body: json.RawMessage(`{"message":"hi"}`), Status: models.MessageStatusSent,
		AcceptedAt: now, SentAt: &now,
	}
	mockMessages.On("GetByID", mock.Anything, msgID, userID).Return(msg, nil)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/messages/"+msgID.String(),
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.MessageResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, msgID, response.ID)
	assert.NotNil(t, response.SentAt)

	mockMessages.AssertExpectations(t)
}

func TestMessageHandler_Get_NotFound(t *testing.T) {
	mockMessages := new(testutil.MockMessageService)
	app := newMessageTestApp(mockMessages)

	userID := uuid.New()
	msgID := uuid.New()
	mockMessages.On("GetByID", mock.Anything, msgID, userID).Return(nil, services.ErrMessageNotFound)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/messages/"+msgID.String(),
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestMessageHandler_Get_InvalidID(t *testing.T) {
	mockMessages := new(testutil.MockMessageService)
	app := newMessageTestApp(mockMessages)

	userID := uuid.New()
	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/messages/not-a-uuid",
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	mockMessages.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}
