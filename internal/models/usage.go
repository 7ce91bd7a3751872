package models

import (
	"time"

	"github.com/google/uuid"
)

type UserUsage struct {
	UserID        uuid.UUID  `json:"user_id"`
	TotalRequests int        `json:"total_requests"`
	RequestsToday int        `json:"requests_today"`
	LastRequestAt *time.Time `json:"last_request_at,omitempty"`
}
