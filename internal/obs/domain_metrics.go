package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// IntentTotal counts payment intent creation outcomes.
	IntentTotal *prometheus.CounterVec
	// CustomerTotal counts customer registration outcomes.
	CustomerTotal *prometheus.CounterVec
	// WebhookTotal counts inbound webhook processing outcomes by event type.
	WebhookTotal *prometheus.CounterVec
	// FulfillmentTotal counts fulfillment handler outcomes.
	FulfillmentTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		IntentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intent_total",
			Help:      "Count of payment intent creation outcomes.",
		}, []string{"result"})
		CustomerTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customer_register_total",
			Help:      "Count of customer registration outcomes.",
		}, []string{"result"})
		WebhookTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Count of processed webhook notifications by event type and outcome.",
		}, []string{"type", "result"})
		FulfillmentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillment_total",
			Help:      "Count of fulfillment handler outcomes.",
		}, []string{"topic", "result"})

		mustRegisterCollector(reg, IntentTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				IntentTotal = v
			}
		})
		mustRegisterCollector(reg, CustomerTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CustomerTotal = v
			}
		})
		mustRegisterCollector(reg, WebhookTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WebhookTotal = v
			}
		})
		mustRegisterCollector(reg, FulfillmentTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FulfillmentTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
