package obs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/storefront-cart/internal/events"
)

// CartMetrics groups Prometheus collectors for cart activity.
type CartMetrics struct {
	Mutations *prometheus.CounterVec
	Discounts *prometheus.CounterVec
	Events    *prometheus.CounterVec
}

// NewCartMetrics registers and returns cart collectors. Collectors already
// present in reg are reused. Every known topic starts with a zero series.
func NewCartMetrics(namespace string, reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &CartMetrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart item mutations by operation and outcome.",
		}, []string{"op", "result"}),
		Discounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_discount_applications_total",
			Help:      "Count of discount operations by kind and outcome.",
		}, []string{"kind", "result"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_events_total",
			Help:      "Count of cart events observed by topic.",
		}, []string{"topic"}),
	}
	mustRegisterCounter(reg, &m.Mutations)
	mustRegisterCounter(reg, &m.Discounts)
	mustRegisterCounter(reg, &m.Events)
	for _, topic := range events.DefaultTopics() {
		m.Events.WithLabelValues(topic)
	}
	return m
}

type eventLabels struct {
	Op   string `json:"op"`
	Kind string `json:"kind"`
}

// Notify implements events.Notifier, translating cart events into counters.
func (m *CartMetrics) Notify(_ context.Context, ev events.Event) error {
	m.Events.WithLabelValues(ev.Topic).Inc()

	var labels eventLabels
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &labels); err != nil {
			return fmt.Errorf("decode %s payload: %w", ev.Topic, err)
		}
	}
	switch ev.Topic {
	case events.TopicItemAdded, events.TopicItemUpdated, events.TopicItemRemoved:
		m.Mutations.WithLabelValues(labels.Op, "ok").Inc()
	case events.TopicItemRejected:
		m.Mutations.WithLabelValues(labels.Op, "rejected").Inc()
	case events.TopicCleared:
		m.Mutations.WithLabelValues("clear", "ok").Inc()
	case events.TopicDiscountApplied:
		m.Discounts.WithLabelValues(labels.Kind, "applied").Inc()
	case events.TopicDiscountRejected:
		m.Discounts.WithLabelValues(labels.Kind, "rejected").Inc()
	case events.TopicDiscountRemoved:
		m.Discounts.WithLabelValues(labels.Kind, "removed").Inc()
	}
	return nil
}

func mustRegisterCounter(reg prometheus.Registerer, counter **prometheus.CounterVec) {
	if err := reg.Register(*counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				*counter = existing
			}
			return
		}
		panic(fmt.Errorf("register cart metric: %w", err))
	}
}
