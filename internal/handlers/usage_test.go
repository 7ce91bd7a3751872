package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/formgate/formgate-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUsageTestApp(usageSvc *testutil.MockUsageService) http.Handler {
	handler := NewUsageHandler(usageSvc)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Get("/usage", handler.Get)
	return app
}

func TestUsageHandler_Get_Success(t *testing.T) {
	mockUsage := new(testutil.MockUsageService)
	app := newUsageTestApp(mockUsage)

	userID := uuid.New()
	now := time.Now()
	usage := &models.UserUsage{UserID: userID, TotalRequests: 42, RequestsToday: 7, LastRequestAt: &now}
	mockUsage.On("Get", mock.Anything, userID).Return(usage, nil)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/usage",
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.UsageResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, 42, response.TotalRequests)
	assert.Equal(t, 7, response.RequestsToday)
	assert.NotNil(t, response.LastRequestAt)

	mockUsage.AssertExpectations(t)
}

func TestUsageHandler_Get_FirstRead(t *testing.T) {
	mockUsage := new(testutil.MockUsageService)
	app := newUsageTestApp(mockUsage)

	userID := uuid.New()
	usage := &models.UserUsage{UserID: userID}
	mockUsage.On("Get", mock.Anything, userID).Return(usage, nil)

	client := testutil.NewHTTPTestClient(t, app)
	token := testutil.GenerateTestToken(t, userID, "owner@example.com")
	rec := client.GET("/usage",
		map[string]string{"Authorization": testutil.AuthHeader(token)})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.UsageResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, 0, response.TotalRequests)
	assert.Nil(t, response.LastRequestAt)
}

func TestUsageHandler_Get_NotAuthenticated(t *testing.T) {
	app := newUsageTestApp(new(testutil.MockUsageService))

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
