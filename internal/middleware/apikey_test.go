package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
)

// stubAuthenticator returns a fixed result for any raw key.
type stubAuthenticator struct {
	user *models.User
	key  *models.APIKey
	err  error

	gotRaw string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, raw string) (*models.User, *models.APIKey, error) {
	s.gotRaw = raw
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, s.key, nil
}

func newAPIKeyTestApp(auth *stubAuthenticator, captured **models.APIKey) http.Handler {
	app := drift.New()
	app.Use(APIKeyAuth(auth))
	app.Post("/send", func(c *drift.Context) {
		if captured != nil {
			*captured = GetAPIKey(c)
		}
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	auth := &stubAuthenticator{}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing api key")
	assert.Empty(t, auth.gotRaw)
}

func TestAPIKeyAuth_HeaderKey(t *testing.T) {
	userID := uuid.New()
	auth := &stubAuthenticator{
		user: &models.User{ID: userID},
		key:  &models.APIKey{ID: uuid.New(), UserID: userID, IsActive: true},
	}
	var captured *models.APIKey
	app := newAPIKeyTestApp(auth, &captured)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(APIKeyHeader, "raw-from-header")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw-from-header", auth.gotRaw)
	assert.Equal(t, auth.key.ID, captured.ID)
}

func TestAPIKeyAuth_QueryParamKey(t *testing.T) {
	userID := uuid.New()
	auth := &stubAuthenticator{
		user: &models.User{ID: userID},
		key:  &models.APIKey{ID: uuid.New(), UserID: userID, IsActive: true},
	}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send?apikey=raw-from-query", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw-from-query", auth.gotRaw)
}

func TestAPIKeyAuth_HeaderTakesPrecedenceOverQuery(t *testing.T) {
	userID := uuid.New()
	auth := &stubAuthenticator{
		user: &models.User{ID: userID},
		key:  &models.APIKey{ID: uuid.New(), UserID: userID, IsActive: true},
	}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send?apikey=from-query", nil)
	req.Header.Set(APIKeyHeader, "from-header")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-header", auth.gotRaw)
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	auth := &stubAuthenticator{err: services.ErrAPIKeyInvalid}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(APIKeyHeader, "bad-key")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or revoked api key")
}

func TestAPIKeyAuth_LookupFailureIsServerError(t *testing.T) {
	auth := &stubAuthenticator{err: assert.AnError}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(APIKeyHeader, "some-key")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPIKeyAuth_RevokedKey(t *testing.T) {
	auth := &stubAuthenticator{err: services.ErrAPIKeyRevoked}
	app := newAPIKeyTestApp(auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(APIKeyHeader, "revoked-key")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "api key has been revoked")
}

func TestGetAPIKeyUser_NotSet(t *testing.T) {
	app := drift.New()

	var gotUser *models.User
	app.Get("/open", func(c *drift.Context) {
		gotUser = GetAPIKeyUser(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Nil(t, gotUser)
}
