package middleware

import (
	"time"

	"github.com/formgate/formgate-api/internal/metrics"
	"github.com/go-chi/httprate"
	"github.com/m1z23r/drift/pkg/drift"
)

// SendRateLimit applies a sliding-window quota per API key to the send
// endpoint. Unauthenticated probes fall back to a per-address window so
// they cannot starve real keys.
func SendRateLimit(requestsPerMinute int) drift.HandlerFunc {
	limiter := httprate.NewRateLimiter(requestsPerMinute, time.Minute)

	return func(c *drift.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.QueryParam(APIKeyQueryParam)
		}
		if key == "" {
			if ip, err := httprate.KeyByIP(c.Request); err == nil {
				key = ip
			}
		}

		if limiter.OnLimit(c.Response, c.Request, key) {
			metrics.RateLimited.Inc()
			c.Abort()
			return
		}
		c.Next()
	}
}
