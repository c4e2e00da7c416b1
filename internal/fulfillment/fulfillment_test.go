package fulfillment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mintpay/checkout-api/internal/common"
	"github.com/mintpay/checkout-api/internal/events"
	"github.com/mintpay/checkout-api/internal/fulfillment"
	"github.com/mintpay/checkout-api/internal/webhook"
)

type countingNotifier struct {
	events []events.Event
}

func (n *countingNotifier) Notify(_ context.Context, ev events.Event) error {
	n.events = append(n.events, ev)
	return nil
}

func succeededEvent(id string) webhook.Event {
	return webhook.Event{
		ID:   id,
		Type: webhook.TypeIntentSucceeded,
		Data: webhook.EventData{Object: webhook.IntentObject{
			ID:       "pi_1",
			Amount:   1099,
			Currency: "aud",
			Status:   "succeeded",
		}},
	}
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestHandleSucceededEmitsOrderPaid(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{sink}},
		fulfillment.NewReplayGuard(redisClient(t), time.Hour),
		zerolog.Nop(),
	)

	require.NoError(t, f.HandleSucceeded(context.Background(), succeededEvent("evt_1")))
	require.Len(t, sink.events, 1)
	require.Equal(t, events.TopicOrderPaid, sink.events[0].Topic)
	require.JSONEq(t,
		`{"intentId":"pi_1","amount":1099,"currency":"aud","status":"succeeded"}`,
		string(sink.events[0].Payload))
}

func TestDuplicateDeliveryFulfilsOnce(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{sink}},
		fulfillment.NewReplayGuard(redisClient(t), time.Hour),
		zerolog.Nop(),
	)

	ev := succeededEvent("evt_dup")
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.Len(t, sink.events, 1, "second delivery must not repeat side effects")
}

func TestDistinctEventsEachFulfilled(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{sink}},
		fulfillment.NewReplayGuard(redisClient(t), time.Hour),
		zerolog.Nop(),
	)

	require.NoError(t, f.HandleSucceeded(context.Background(), succeededEvent("evt_a")))
	require.NoError(t, f.HandleSucceeded(context.Background(), succeededEvent("evt_b")))
	require.Len(t, sink.events, 2)
}

type flakyNotifier struct {
	failures  int
	delivered []events.Event
}

func (n *flakyNotifier) Notify(_ context.Context, ev events.Event) error {
	if n.failures > 0 {
		n.failures--
		return errors.New("notification channel down")
	}
	n.delivered = append(n.delivered, ev)
	return nil
}

func TestRedeliveryAfterTransientFailureFulfils(t *testing.T) {
	t.Parallel()

	flaky := &flakyNotifier{failures: 1}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{flaky}},
		fulfillment.NewReplayGuard(redisClient(t), time.Hour),
		zerolog.Nop(),
	)

	ev := succeededEvent("evt_retry")
	require.Error(t, f.HandleSucceeded(context.Background(), ev))
	require.Empty(t, flaky.delivered)

	// The failed attempt must give the claim back so the processor's
	// redelivery of the same event id can complete the fulfillment.
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.Len(t, flaky.delivered, 1)

	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.Len(t, flaky.delivered, 1, "a completed event stays fulfilled once")
}

func TestRedeliveryAfterTransientFailureFulfilsInMemory(t *testing.T) {
	t.Parallel()

	flaky := &flakyNotifier{failures: 1}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{flaky}},
		fulfillment.NewReplayGuard(nil, time.Hour),
		zerolog.Nop(),
	)

	ev := succeededEvent("evt_retry_mem")
	require.Error(t, f.HandleSucceeded(context.Background(), ev))
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.Len(t, flaky.delivered, 1)
}

func TestInMemoryGuardWhenRedisAbsent(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	f := fulfillment.New(
		&events.Bus{Notifiers: []events.Notifier{sink}},
		fulfillment.NewReplayGuard(nil, time.Hour),
		zerolog.Nop(),
	)

	ev := succeededEvent("evt_mem")
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.NoError(t, f.HandleSucceeded(context.Background(), ev))
	require.Len(t, sink.events, 1)
}

func TestHandleFailedEmitsPaymentFailed(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	f := fulfillment.New(&events.Bus{Notifiers: []events.Notifier{sink}}, nil, zerolog.Nop())

	ev := webhook.Event{
		ID:   "evt_f",
		Type: webhook.TypeIntentFailed,
		Data: webhook.EventData{Object: webhook.IntentObject{ID: "pi_9", Status: "payment_failed"}},
	}
	require.NoError(t, f.HandleFailed(context.Background(), ev))
	require.Len(t, sink.events, 1)
	require.Equal(t, events.TopicPaymentFailed, sink.events[0].Topic)
}

func TestReceiptNotifierSendsOnOrderPaidOnly(t *testing.T) {
	t.Parallel()

	outbox := &common.InMemoryEmail{}
	notifier := fulfillment.ReceiptNotifier{Sender: outbox, To: "jenny@example.com"}

	bus := &events.Bus{Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicOrderPaid,
		map[string]any{"intentId": "pi_1", "amount": 1099, "currency": "aud"})
	require.NoError(t, err)
	require.Len(t, outbox.Outbox, 1)
	require.Equal(t, "jenny@example.com", outbox.Outbox[0].To)
	require.Contains(t, outbox.Outbox[0].HTML, "pi_1")
	require.Contains(t, outbox.Outbox[0].HTML, "AUD")

	_, err = bus.Emit(context.Background(), events.TopicPaymentFailed, nil)
	require.NoError(t, err)
	require.Len(t, outbox.Outbox, 1, "failed payments do not get receipts")
}
