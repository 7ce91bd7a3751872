package dto

import (
	"github.com/google/uuid"
)

type CreateRouteRequest struct {
	Channel         string `json:"channel"`
	RecipientEmails string `json:"recipient_emails"`
}

type UpdateRouteRequest struct {
	Channel         *string `json:"channel,omitempty"`
	RecipientEmails *string `json:"recipient_emails,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

type RouteResponse struct {
	ID              uuid.UUID `json:"id"`
	Channel         string    `json:"channel"`
	IsActive        bool      `json:"is_active"`
	RecipientEmails string    `json:"recipient_emails"`
	CreatedAt       string    `json:"created_at"`
}
