package testutil

import (
	"context"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAPIKeyService mocks the APIKeyService
type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Issue(ctx context.Context, userID, routeID uuid.UUID) (*models.APIKey, string, error) {
	args := m.Called(ctx, userID, routeID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.APIKey), args.String(1), args.Error(2)
}

func (m *MockAPIKeyService) List(ctx context.Context, userID uuid.UUID, search string) ([]models.APIKey, error) {
	args := m.Called(ctx, userID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) GetByID(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error) {
	args := m.Called(ctx, keyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error) {
	args := m.Called(ctx, keyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) Authenticate(ctx context.Context, raw string) (*models.User, *models.APIKey, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*models.APIKey), args.Error(2)
}

// MockRouteService mocks the RouteService
type MockRouteService struct {
	mock.Mock
}

func (m *MockRouteService) Create(ctx context.Context, userID uuid.UUID, channel, recipientEmails string) (*models.Route, error) {
	args := m.Called(ctx, userID, channel, recipientEmails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockRouteService) List(ctx context.Context, userID uuid.UUID) ([]models.Route, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *MockRouteService) GetByID(ctx context.Context, routeID, userID uuid.UUID) (*models.Route, error) {
	args := m.Called(ctx, routeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockRouteService) Update(ctx context.Context, routeID, userID uuid.UUID, channel, recipientEmails *string, isActive *bool) (*models.Route, error) {
	args := m.Called(ctx, routeID, userID, channel, recipientEmails, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockRouteService) Delete(ctx context.Context, routeID, userID uuid.UUID) error {
	args := m.Called(ctx, routeID, userID)
	return args.Error(0)
}

// MockMessageService mocks the MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) List(ctx context.Context, userID uuid.UUID, search string) ([]models.Message, error) {
	args := m.Called(ctx, userID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) GetByID(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, messageID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockUsageService mocks the UsageService
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Get(ctx context.Context, userID uuid.UUID) (*models.UserUsage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserUsage), args.Error(1)
}

// MockDeliveryService mocks the DeliveryService
type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Deliver(ctx context.Context, user *models.User, key *models.APIKey, sub *services.Submission) (*models.Message, error) {
	args := m.Called(ctx, user, key, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockEmailSender mocks the outbound email transport
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
