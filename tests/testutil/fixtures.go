package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		RETURNING id, email, name, created_at
	`, user.Email, user.Name).Scan(
		&user.ID, &user.Email, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// CreateRoute creates a test route owned by the given user
func (f *Fixtures) CreateRoute(t *testing.T, userID uuid.UUID, opts ...RouteOption) *models.Route {
	t.Helper()
	f.counter++

	route := &models.Route{
		UserID:          userID,
		Channel:         models.ChannelEmail,
		IsActive:        true,
		RecipientEmails: fmt.Sprintf("owner%d@example.com", f.counter),
	}

	for _, opt := range opts {
		opt(route)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO routes (user_id, channel, is_active, recipient_emails)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, channel, is_active, recipient_emails, created_at
	`, route.UserID, route.Channel, route.IsActive, route.RecipientEmails).Scan(
		&route.ID, &route.UserID, &route.Channel, &route.IsActive,
		&route.RecipientEmails, &route.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create route: %v", err)
	}

	return route
}

// RouteOption configures a test route
type RouteOption func(*models.Route)

// WithRecipients sets the route's recipient list
func WithRecipients(emails string) RouteOption {
	return func(r *models.Route) {
		r.RecipientEmails = emails
	}
}

// WithInactive marks the route as deactivated
func WithInactive() RouteOption {
	return func(r *models.Route) {
		r.IsActive = false
	}
}
