package dto

import (
	"github.com/google/uuid"
)

type CreateAPIKeyRequest struct {
	RouteID uuid.UUID `json:"route_id"`
}

type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"is_active"`
	RouteID    *uuid.UUID `json:"route_id,omitempty"`
	UsageCount int        `json:"usage_count"`
	LastUsedAt *string    `json:"last_used_at,omitempty"`
	RevokedAt  *string    `json:"revoked_at,omitempty"`
	CreatedAt  string     `json:"created_at"`
}

// APIKeyCreatedResponse carries the raw secret. It is returned exactly
// once, at issuance; only the hash survives server-side.
type APIKeyCreatedResponse struct {
	ID        uuid.UUID  `json:"id"`
	Key       string     `json:"key"`
	Prefix    string     `json:"prefix"`
	IsActive  bool       `json:"is_active"`
	RouteID   *uuid.UUID `json:"route_id,omitempty"`
	CreatedAt string     `json:"created_at"`
}
