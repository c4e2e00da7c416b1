package webhook

import (
	"encoding/json"
	"errors"
	"strings"
)

// Recognised event types. The processor's protocol evolves independently of
// this deployment, so anything outside this set is acknowledged untouched.
const (
	TypeIntentSucceeded = "payment_intent.succeeded"
	TypeIntentFailed    = "payment_intent.payment_failed"
)

// Event is the verified notification envelope. Payload fields are only
// trusted after signature verification succeeds.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData wraps the object the event reports on.
type EventData struct {
	Object IntentObject `json:"object"`
}

// IntentObject is the payment-intent snapshot carried by intent events.
type IntentObject struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// ParseEvent decodes a verified raw body into an event envelope.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, err
	}
	if strings.TrimSpace(ev.Type) == "" {
		return Event{}, errors.New("webhook: event type is required")
	}
	return ev, nil
}
