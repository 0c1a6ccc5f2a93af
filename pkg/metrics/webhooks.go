package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records payment webhook ingestion activity.
type WebhookMetrics struct {
	received  *prometheus.CounterVec
	duplicate *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_received_total",
		Help: "Payment webhook events accepted for processing.",
	}, []string{"event_type"})
	duplicate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_duplicate_total",
		Help: "Payment webhook events skipped as already processed.",
	}, []string{"event_type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_rejected_total",
		Help: "Payment webhook requests rejected before processing.",
	}, []string{"reason"})
	reg.MustRegister(received, duplicate, rejected)
	return &WebhookMetrics{
		received:  received,
		duplicate: duplicate,
		rejected:  rejected,
	}
}

// IncReceived counts one accepted event.
func (m *WebhookMetrics) IncReceived(eventType string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDuplicate counts one event skipped by the idempotency check.
func (m *WebhookMetrics) IncDuplicate(eventType string) {
	if m == nil || m.duplicate == nil {
		return
	}
	m.duplicate.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncRejected counts one rejected request (bad_signature, bad_payload).
func (m *WebhookMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
