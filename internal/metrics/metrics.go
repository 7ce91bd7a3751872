package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters. MessagesAccepted counts ledger writes; the other two
// split terminal outcomes, so accepted = sent + failed + in flight.
var (
	MessagesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formgate_messages_accepted_total",
		Help: "Messages accepted into the ledger.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formgate_messages_sent_total",
		Help: "Messages successfully delivered by email.",
	})

	MessagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formgate_messages_failed_total",
		Help: "Messages whose delivery attempt failed.",
	})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formgate_auth_failures_total",
		Help: "Requests rejected for a missing, invalid or revoked API key.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formgate_rate_limited_total",
		Help: "Send requests rejected by the per-key rate limit.",
	})
)
