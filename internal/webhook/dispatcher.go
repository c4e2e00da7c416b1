package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mintpay/checkout-api/internal/obs"
)

// HandlerFunc reacts to one verified event. Handlers must be idempotent
// against duplicate delivery of the same event id: the processor guarantees
// at-least-once, not exactly-once.
type HandlerFunc func(ctx context.Context, ev Event) error

// Dispatcher routes verified events to their handlers by type. Unrecognised
// types are acknowledged without action so new processor event kinds never
// break delivery.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   zerolog.Logger
}

// NewDispatcher constructs a dispatcher with no routes registered.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{handlers: map[string]HandlerFunc{}, logger: logger}
}

// On registers the handler for an event type, replacing any previous one.
func (d *Dispatcher) On(eventType string, h HandlerFunc) *Dispatcher {
	d.handlers[eventType] = h
	return d
}

// Dispatch invokes the handler registered for the event's type. The returned
// handled flag reports whether a handler ran; a handler error never blocks
// acknowledgment, it is the fulfillment side's job to recover internally.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (handled bool, err error) {
	h, ok := d.handlers[ev.Type]
	if !ok {
		countWebhook(ev.Type, "ignored")
		d.logger.Debug().Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("webhook_event_ignored")
		return false, nil
	}
	if err := h(ctx, ev); err != nil {
		countWebhook(ev.Type, "handler_error")
		d.logger.Error().Err(err).Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("webhook_handler_failed")
		return true, err
	}
	countWebhook(ev.Type, "success")
	return true, nil
}

func countWebhook(eventType, result string) {
	if obs.WebhookTotal != nil {
		obs.WebhookTotal.WithLabelValues(eventType, result).Inc()
	}
}
