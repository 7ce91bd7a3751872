package services

import (
	"context"
	"testing"
	"time"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouteService(t *testing.T) (*RouteService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewRouteService(db), mock
}

func routeColumns() []string {
	return []string{"id", "user_id", "channel", "is_active", "recipient_emails", "created_at"}
}

func TestRouteService_Create_Success(t *testing.T) {
	svc, mock := setupRouteService(t)
	ctx := context.Background()
	userID := uuid.New()
	routeID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(userID, "email", "a@example.com,b@example.com").
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, userID, "email", true, "a@example.com,b@example.com", now))

	// whitespace and empty entries in the list get normalized away
	route, err := svc.Create(ctx, userID, "EMAIL", " a@example.com , b@example.com ,")

	require.NoError(t, err)
	assert.Equal(t, routeID, route.ID)
	assert.True(t, route.IsActive)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, route.Recipients())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Create_DefaultsToEmailChannel(t *testing.T) {
	svc, mock := setupRouteService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(userID, "email", "a@example.com").
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(uuid.New(), userID, "email", true, "a@example.com", now))

	route, err := svc.Create(ctx, userID, "", "a@example.com")

	require.NoError(t, err)
	assert.Equal(t, models.ChannelEmail, route.Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Create_RejectsUnsupportedChannel(t *testing.T) {
	svc, _ := setupRouteService(t)

	route, err := svc.Create(context.Background(), uuid.New(), "sms", "a@example.com")

	assert.Nil(t, route)
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "channel")
}

func TestRouteService_Create_RejectsInvalidRecipient(t *testing.T) {
	svc, _ := setupRouteService(t)

	route, err := svc.Create(context.Background(), uuid.New(), "email", "a@example.com,not-an-email")

	assert.Nil(t, route)
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "recipient_emails")
}

func TestRouteService_Create_RejectsEmptyRecipientList(t *testing.T) {
	svc, _ := setupRouteService(t)

	route, err := svc.Create(context.Background(), uuid.New(), "email", " , ,")

	assert.Nil(t, route)
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "recipient_emails")
}

func TestRouteService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupRouteService(t)

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	route, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrRouteNotFound)
	assert.Nil(t, route)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_Partial(t *testing.T) {
	svc, mock := setupRouteService(t)
	ctx := context.Background()
	userID := uuid.New()
	routeID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(routeID, userID).
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, userID, "email", true, "old@example.com", now))

	// only is_active changes; channel and recipients carry over
	mock.ExpectQuery(`UPDATE routes`).
		WithArgs(routeID, userID, "email", "old@example.com", false).
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, userID, "email", false, "old@example.com", now))

	inactive := false
	route, err := svc.Update(ctx, routeID, userID, nil, nil, &inactive)

	require.NoError(t, err)
	assert.False(t, route.IsActive)
	assert.Equal(t, "old@example.com", route.RecipientEmails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_RejectsInvalidRecipients(t *testing.T) {
	svc, mock := setupRouteService(t)
	ctx := context.Background()
	userID := uuid.New()
	routeID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(routeID, userID).
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, userID, "email", true, "old@example.com", now))

	bad := "broken"
	route, err := svc.Update(ctx, routeID, userID, nil, &bad, nil)

	assert.Nil(t, route)
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "recipient_emails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Delete_NotFound(t *testing.T) {
	svc, mock := setupRouteService(t)

	mock.ExpectExec(`DELETE FROM routes`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrRouteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_ResolveForDelivery_Success(t *testing.T) {
	svc, mock := setupRouteService(t)
	routeID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1`).
		WithArgs(routeID).
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, userID, "email", true, "dest@example.com", now))

	key := &models.APIKey{RouteID: &routeID}
	route, err := svc.ResolveForDelivery(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, "dest@example.com", route.RecipientEmails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_ResolveForDelivery_NoBinding(t *testing.T) {
	svc, mock := setupRouteService(t)

	route, err := svc.ResolveForDelivery(context.Background(), &models.APIKey{RouteID: nil})

	assert.ErrorIs(t, err, ErrNoActiveRoute)
	assert.Nil(t, route)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_ResolveForDelivery_RouteDeleted(t *testing.T) {
	svc, mock := setupRouteService(t)
	routeID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1`).
		WithArgs(routeID).
		WillReturnError(pgx.ErrNoRows)

	route, err := svc.ResolveForDelivery(context.Background(), &models.APIKey{RouteID: &routeID})

	assert.ErrorIs(t, err, ErrNoActiveRoute)
	assert.Nil(t, route)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_ResolveForDelivery_InactiveRoute(t *testing.T) {
	svc, mock := setupRouteService(t)
	routeID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM routes\s+WHERE id = \$1`).
		WithArgs(routeID).
		WillReturnRows(pgxmock.NewRows(routeColumns()).
			AddRow(routeID, uuid.New(), "email", false, "dest@example.com", now))

	route, err := svc.ResolveForDelivery(context.Background(), &models.APIKey{RouteID: &routeID})

	assert.ErrorIs(t, err, ErrNoActiveRoute)
	assert.Nil(t, route)
	assert.NoError(t, mock.ExpectationsWereMet())
}
