package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mintpay/checkout-api/internal/events"
)

type recordingNotifier struct {
	events []events.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.Event) error {
	n.events = append(n.events, ev)
	return n.err
}

func TestEmitFansOutToAllNotifiers(t *testing.T) {
	t.Parallel()

	first := &recordingNotifier{}
	second := &recordingNotifier{}
	bus := &events.Bus{Notifiers: []events.Notifier{first, second}}

	ev, err := bus.Emit(context.Background(), events.TopicOrderPaid, map[string]any{"intentId": "pi_1"})
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.JSONEq(t, `{"intentId":"pi_1"}`, string(first.events[0].Payload))
}

func TestEmitJoinsNotifierErrorsWithoutStopping(t *testing.T) {
	t.Parallel()

	failing := &recordingNotifier{err: errors.New("smtp down")}
	ok := &recordingNotifier{}
	bus := &events.Bus{Notifiers: []events.Notifier{failing, ok}}

	_, err := bus.Emit(context.Background(), events.TopicPaymentFailed, nil)
	require.Error(t, err)
	require.Len(t, ok.events, 1, "later notifiers still run")
}

func TestEmitRequiresTopic(t *testing.T) {
	t.Parallel()

	bus := &events.Bus{}
	_, err := bus.Emit(context.Background(), "  ", nil)
	require.Error(t, err)
}

func TestEmitRejectsInvalidJSONPayload(t *testing.T) {
	t.Parallel()

	bus := &events.Bus{}
	_, err := bus.Emit(context.Background(), events.TopicOrderPaid, []byte("{broken"))
	require.Error(t, err)
}
