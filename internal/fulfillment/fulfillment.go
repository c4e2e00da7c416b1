package fulfillment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mintpay/checkout-api/internal/events"
	"github.com/mintpay/checkout-api/internal/obs"
	"github.com/mintpay/checkout-api/internal/webhook"
)

// Fulfiller reacts to verified payment notifications. Handlers are safe to
// invoke more than once per event id because delivery is at-least-once.
type Fulfiller struct {
	Bus    *events.Bus
	Guard  *ReplayGuard
	Logger zerolog.Logger
}

// New wires a fulfiller. guard may be nil, in which case every delivery is
// treated as the first one.
func New(bus *events.Bus, guard *ReplayGuard, logger zerolog.Logger) *Fulfiller {
	return &Fulfiller{Bus: bus, Guard: guard, Logger: logger}
}

// paidPayload is the event body emitted on successful payment.
type paidPayload struct {
	IntentID string `json:"intentId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// HandleSucceeded fulfils the order behind a succeeded payment intent.
func (f *Fulfiller) HandleSucceeded(ctx context.Context, ev webhook.Event) error {
	return f.handle(ctx, ev, events.TopicOrderPaid)
}

// HandleFailed records a failed payment so the customer can be re-engaged.
func (f *Fulfiller) HandleFailed(ctx context.Context, ev webhook.Event) error {
	return f.handle(ctx, ev, events.TopicPaymentFailed)
}

func (f *Fulfiller) handle(ctx context.Context, ev webhook.Event, topic string) error {
	first, err := f.firstDelivery(ctx, ev.ID)
	if err != nil {
		f.Logger.Warn().Err(err).Str("event_id", ev.ID).Msg("replay guard unavailable, proceeding")
	}
	if !first {
		f.Logger.Info().
			Str("event_id", ev.ID).
			Str("topic", topic).
			Msg("duplicate delivery, already fulfilled")
		f.count(topic, "duplicate")
		return nil
	}

	obj := ev.Data.Object
	f.Logger.Info().
		Str("event_id", ev.ID).
		Str("topic", topic).
		Str("intent_id", obj.ID).
		Int64("amount", obj.Amount).
		Str("currency", obj.Currency).
		Msg("fulfilling payment notification")

	if f.Bus != nil {
		if _, emitErr := f.Bus.Emit(ctx, topic, paidPayload{
			IntentID: obj.ID,
			Amount:   obj.Amount,
			Currency: obj.Currency,
			Status:   obj.Status,
		}); emitErr != nil {
			// The webhook ack goes out regardless, so releasing the claim is
			// what lets the processor's redelivery retry the side effect.
			f.release(ctx, ev.ID)
			f.count(topic, "error")
			return fmt.Errorf("fulfillment: emit %s: %w", topic, emitErr)
		}
	}
	f.count(topic, "ok")
	return nil
}

func (f *Fulfiller) firstDelivery(ctx context.Context, eventID string) (bool, error) {
	if f.Guard == nil {
		return true, nil
	}
	return f.Guard.FirstDelivery(ctx, eventID)
}

func (f *Fulfiller) release(ctx context.Context, eventID string) {
	if f.Guard == nil {
		return
	}
	if err := f.Guard.Release(ctx, eventID); err != nil {
		f.Logger.Warn().Err(err).Str("event_id", eventID).Msg("release replay claim failed")
	}
}

func (f *Fulfiller) count(topic, result string) {
	if obs.FulfillmentTotal == nil {
		return
	}
	obs.FulfillmentTotal.WithLabelValues(topic, result).Inc()
}
