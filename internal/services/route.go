package services

import (
	"context"
	"errors"
	"strings"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrNoActiveRoute = errors.New("no active email route for this api key")
)

type RouteService struct {
	db *database.DB
}

func NewRouteService(db *database.DB) *RouteService {
	return &RouteService{db: db}
}

// Create validates and persists a delivery route. Recipient validation
// happens here so a key can never be issued against an undeliverable route.
func (s *RouteService) Create(ctx context.Context, userID uuid.UUID, channel, recipientEmails string) (*models.Route, error) {
	if channel == "" {
		channel = models.ChannelEmail
	}
	if errs := validateRouteFields(channel, recipientEmails); len(errs) > 0 {
		return nil, errs
	}

	var route models.Route
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO routes (user_id, channel, recipient_emails)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, channel, is_active, recipient_emails, created_at
	`, userID, strings.ToLower(channel), normalizeEmailList(recipientEmails)).Scan(
		&route.ID, &route.UserID, &route.Channel, &route.IsActive,
		&route.RecipientEmails, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *RouteService) List(ctx context.Context, userID uuid.UUID) ([]models.Route, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, channel, is_active, recipient_emails, created_at
		FROM routes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var r models.Route
		if err := rows.Scan(&r.ID, &r.UserID, &r.Channel, &r.IsActive, &r.RecipientEmails, &r.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *RouteService) GetByID(ctx context.Context, routeID, userID uuid.UUID) (*models.Route, error) {
	var r models.Route
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, channel, is_active, recipient_emails, created_at
		FROM routes
		WHERE id = $1 AND user_id = $2
	`, routeID, userID).Scan(&r.ID, &r.UserID, &r.Channel, &r.IsActive, &r.RecipientEmails, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Update applies a partial update. Nil fields keep their current value.
func (s *RouteService) Update(ctx context.Context, routeID, userID uuid.UUID, channel, recipientEmails *string, isActive *bool) (*models.Route, error) {
	current, err := s.GetByID(ctx, routeID, userID)
	if err != nil {
		return nil, err
	}

	newChannel := current.Channel
	if channel != nil {
		newChannel = strings.ToLower(*channel)
	}
	newRecipients := current.RecipientEmails
	if recipientEmails != nil {
		newRecipients = *recipientEmails
	}
	newActive := current.IsActive
	if isActive != nil {
		newActive = *isActive
	}

	if errs := validateRouteFields(newChannel, newRecipients); len(errs) > 0 {
		return nil, errs
	}

	var r models.Route
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE routes
		SET channel = $3, recipient_emails = $4, is_active = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, channel, is_active, recipient_emails, created_at
	`, routeID, userID, newChannel, normalizeEmailList(newRecipients), newActive).Scan(
		&r.ID, &r.UserID, &r.Channel, &r.IsActive, &r.RecipientEmails, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Delete removes a route. Keys bound to it keep their record but lose the
// binding (route_id goes NULL at the storage layer).
func (s *RouteService) Delete(ctx context.Context, routeID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM routes WHERE id = $1 AND user_id = $2
	`, routeID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// ResolveForDelivery loads the route bound to a key and gates on it:
// the binding must exist, be active, and carry the email channel.
func (s *RouteService) ResolveForDelivery(ctx context.Context, key *models.APIKey) (*models.Route, error) {
	if key.RouteID == nil {
		return nil, ErrNoActiveRoute
	}

	var r models.Route
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, channel, is_active, recipient_emails, created_at
		FROM routes
		WHERE id = $1
	`, *key.RouteID).Scan(&r.ID, &r.UserID, &r.Channel, &r.IsActive, &r.RecipientEmails, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveRoute
		}
		return nil, err
	}

	if !r.IsActive || !strings.EqualFold(r.Channel, models.ChannelEmail) {
		return nil, ErrNoActiveRoute
	}
	return &r, nil
}

func validateRouteFields(channel, recipientEmails string) FieldErrors {
	errs := FieldErrors{}
	if !strings.EqualFold(channel, models.ChannelEmail) {
		errs["channel"] = "unsupported channel, only \"email\" is available"
	}
	if err := ValidateEmailList(recipientEmails); err != nil {
		errs["recipient_emails"] = err.Error()
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func normalizeEmailList(value string) string {
	var out []string
	for _, addr := range strings.Split(value, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return strings.Join(out, ",")
}
