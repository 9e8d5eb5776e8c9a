package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CheckoutMetrics tracks order placement and the notification side effect.
type CheckoutMetrics struct {
	placed                *prometheus.CounterVec
	failures              *prometheus.CounterVec
	duration              *prometheus.HistogramVec
	notificationFailures  *prometheus.CounterVec
	notificationDelivered *prometheus.CounterVec
}

// NewCheckoutMetrics registers checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freshcart_orders_placed_total",
		Help: "Orders committed by checkout.",
	}, []string{"payment_method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freshcart_checkout_failures_total",
		Help: "Checkout attempts rejected or failed, by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freshcart_checkout_duration_seconds",
		Help:    "Wall time of checkout attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	notificationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freshcart_notification_dispatch_failures_total",
		Help: "Notification dispatches that failed after an order committed.",
	}, []string{"kind"})
	notificationDelivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freshcart_notification_dispatch_success_total",
		Help: "Notification dispatches accepted by the transport.",
	}, []string{"kind"})
	reg.MustRegister(placed, failures, duration, notificationFailures, notificationDelivered)
	return &CheckoutMetrics{
		placed:                placed,
		failures:              failures,
		duration:              duration,
		notificationFailures:  notificationFailures,
		notificationDelivered: notificationDelivered,
	}
}

// ObservePlaced records a committed order.
func (c *CheckoutMetrics) ObservePlaced(paymentMethod string, took time.Duration) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	c.duration.WithLabelValues(OutcomeSuccess).Observe(took.Seconds())
}

// ObserveFailure records a rejected or failed checkout.
func (c *CheckoutMetrics) ObserveFailure(reason string, took time.Duration) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(reason)).Inc()
	c.duration.WithLabelValues(OutcomeFailure).Observe(took.Seconds())
}

// IncNotificationFailure counts a failed post-commit notification.
func (c *CheckoutMetrics) IncNotificationFailure(kind string) {
	if c == nil || c.notificationFailures == nil {
		return
	}
	c.notificationFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncNotificationSuccess counts a dispatched post-commit notification.
func (c *CheckoutMetrics) IncNotificationSuccess(kind string) {
	if c == nil || c.notificationDelivered == nil {
		return
	}
	c.notificationDelivered.WithLabelValues(normalizeLabel(kind)).Inc()
}
