package services

import (
	"context"
	"errors"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UsageService keeps per-user request counters. The daily counter resets
// lazily at the first request of a new calendar day instead of relying on
// a scheduled job.
type UsageService struct {
	db *database.DB
}

func NewUsageService(db *database.DB) *UsageService {
	return &UsageService{db: db}
}

// Increment records one accepted delivery for the user. The whole
// get-or-create, day-boundary reset and increment runs as one statement,
// so concurrent deliveries for the same user never lose a count.
func (s *UsageService) Increment(ctx context.Context, userID uuid.UUID) (*models.UserUsage, error) {
	var u models.UserUsage
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO user_usage (user_id, total_requests, requests_today, last_request_at)
		VALUES ($1, 1, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_requests = user_usage.total_requests + 1,
			requests_today = CASE
				WHEN user_usage.last_request_at IS NULL
				  OR user_usage.last_request_at::date <> NOW()::date THEN 1
				ELSE user_usage.requests_today + 1
			END,
			last_request_at = NOW()
		RETURNING user_id, total_requests, requests_today, last_request_at
	`, userID).Scan(&u.UserID, &u.TotalRequests, &u.RequestsToday, &u.LastRequestAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get returns the user's usage row, creating an empty one on first read.
func (s *UsageService) Get(ctx context.Context, userID uuid.UUID) (*models.UserUsage, error) {
	var u models.UserUsage
	err := s.db.Pool.QueryRow(ctx, `
		SELECT user_id, total_requests, requests_today, last_request_at
		FROM user_usage
		WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.TotalRequests, &u.RequestsToday, &u.LastRequestAt)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO user_usage (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, total_requests, requests_today, last_request_at
	`, userID).Scan(&u.UserID, &u.TotalRequests, &u.RequestsToday, &u.LastRequestAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
