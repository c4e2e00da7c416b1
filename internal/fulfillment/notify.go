package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mintpay/checkout-api/internal/common"
	"github.com/mintpay/checkout-api/internal/events"
)

// LogNotifier writes every event to the structured log. Payment identifiers
// are safe to log; client secrets never reach the bus.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements events.Notifier.
func (n LogNotifier) Notify(_ context.Context, ev events.Event) error {
	n.Logger.Info().
		Str("event_id", ev.ID).
		Str("topic", ev.Topic).
		RawJSON("payload", ev.Payload).
		Msg("domain event")
	return nil
}

// ReceiptNotifier sends a payment receipt when an order is paid. Other topics
// are ignored.
type ReceiptNotifier struct {
	Sender common.EmailSender
	To     string
}

// Notify implements events.Notifier.
func (n ReceiptNotifier) Notify(_ context.Context, ev events.Event) error {
	if n.Sender == nil || ev.Topic != events.TopicOrderPaid {
		return nil
	}
	var payload paidPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("fulfillment: decode receipt payload: %w", err)
	}
	subject := "Payment received"
	html := fmt.Sprintf(
		"<p>Thanks for your order.</p><p>Amount: %d %s</p><p>Reference: %s</p>",
		payload.Amount, strings.ToUpper(payload.Currency), payload.IntentID,
	)
	if err := n.Sender.Send(n.To, subject, html); err != nil {
		return fmt.Errorf("fulfillment: send receipt: %w", err)
	}
	return nil
}
