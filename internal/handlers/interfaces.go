package handlers

import (
	"context"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/google/uuid"
)

// APIKeyServiceInterface defines the methods used by handlers from APIKeyService
type APIKeyServiceInterface interface {
	Issue(ctx context.Context, userID, routeID uuid.UUID) (*models.APIKey, string, error)
	List(ctx context.Context, userID uuid.UUID, search string) ([]models.APIKey, error)
	GetByID(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error)
	Revoke(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error)
}

// RouteServiceInterface defines the methods used by handlers from RouteService
type RouteServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, channel, recipientEmails string) (*models.Route, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Route, error)
	GetByID(ctx context.Context, routeID, userID uuid.UUID) (*models.Route, error)
	Update(ctx context.Context, routeID, userID uuid.UUID, channel, recipientEmails *string, isActive *bool) (*models.Route, error)
	Delete(ctx context.Context, routeID, userID uuid.UUID) error
}

// MessageServiceInterface defines the methods used by handlers from MessageService
type MessageServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, search string) ([]models.Message, error)
	GetByID(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error)
}

// UsageServiceInterface defines the methods used by handlers from UsageService
type UsageServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserUsage, error)
}

// DeliveryServiceInterface defines the pipeline entry point used by the send handler
type DeliveryServiceInterface interface {
	Deliver(ctx context.Context, user *models.User, key *models.APIKey, sub *services.Submission) (*models.Message, error)
}
