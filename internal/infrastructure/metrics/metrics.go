package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for webhook ingestion.
type Metrics struct {
	WebhooksReceived  *prometheus.CounterVec
	WebhooksRejected  prometheus.Counter
	WebhooksMalformed prometheus.Counter
	WebhooksFailed    prometheus.Counter
	OrdersPersisted   prometheus.Counter
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebhooksReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopdash_webhooks_received_total",
			Help: "Inbound webhook requests by topic.",
		}, []string{"topic"}),
		WebhooksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopdash_webhooks_rejected_total",
			Help: "Webhooks rejected for an invalid HMAC signature.",
		}),
		WebhooksMalformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopdash_webhooks_malformed_total",
			Help: "Webhooks rejected for an unparseable payload.",
		}),
		WebhooksFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopdash_webhooks_failed_total",
			Help: "Webhooks that failed during persistence.",
		}),
		OrdersPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopdash_orders_persisted_total",
			Help: "Orders durably upserted from webhooks.",
		}),
	}
}
