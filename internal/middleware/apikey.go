package middleware

import (
	"context"
	"errors"

	"github.com/formgate/formgate-api/internal/metrics"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	// APIKeyHeader is the preferred credential carrier; the query
	// parameter exists for static forms that cannot set headers.
	APIKeyHeader     = "X-Api-Key"
	APIKeyQueryParam = "apikey"

	apiKeyUserKey = "api_key_user"
	apiKeyObjKey  = "api_key"
)

// APIKeyAuthenticator resolves a raw secret to its owner and key record.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, *models.APIKey, error)
}

// APIKeyAuth authenticates requests by hashed key lookup. It never
// touches usage counters; accounting happens only once a message is
// accepted into the pipeline.
func APIKeyAuth(apiKeyService APIKeyAuthenticator) drift.HandlerFunc {
	return func(c *drift.Context) {
		raw := c.GetHeader(APIKeyHeader)
		if raw == "" {
			raw = c.QueryParam(APIKeyQueryParam)
		}
		if raw == "" {
			metrics.AuthFailures.Inc()
			c.Unauthorized("missing api key")
			return
		}

		user, key, err := apiKeyService.Authenticate(c.Request.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAPIKeyRevoked):
				metrics.AuthFailures.Inc()
				c.Forbidden("api key has been revoked")
			case errors.Is(err, services.ErrAPIKeyInvalid):
				metrics.AuthFailures.Inc()
				c.Unauthorized("invalid or revoked api key")
			default:
				// lookup failures are the server's problem, not a
				// credential problem
				c.InternalServerError("an unexpected error occurred")
			}
			return
		}

		c.Set(apiKeyUserKey, user)
		c.Set(apiKeyObjKey, key)
		c.Next()
	}
}

func GetAPIKeyUser(c *drift.Context) *models.User {
	if v, ok := c.Get(apiKeyUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func GetAPIKey(c *drift.Context) *models.APIKey {
	if v, ok := c.Get(apiKeyObjKey); ok {
		if key, ok := v.(*models.APIKey); ok {
			return key
		}
	}
	return nil
}
