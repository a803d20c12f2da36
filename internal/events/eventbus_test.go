package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversToSubscribers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := NewEventBus("forecast-core", logger)

	received := make(chan *Event, 2)
	handler := func(ctx context.Context, event *Event) error {
		received <- event
		return nil
	}
	bus.Subscribe(EventRestockRecommended, handler)
	bus.Subscribe(EventRestockRecommended, handler)

	payload := RestockRecommended{ProductID: "p1", Urgency: "HIGH", TotalRestockNeeded: 24}
	require.NoError(t, bus.Publish(context.Background(), EventRestockRecommended, payload))

	for i := 0; i < 2; i++ {
		select {
		case event := <-received:
			assert.Equal(t, EventRestockRecommended, event.Type)
			assert.Equal(t, "forecast-core", event.SourceService)
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, payload, event.Payload)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus("forecast-core", logrus.New())

	received := make(chan *Event, 1)
	bus.Subscribe(EventForecastGenerated, func(ctx context.Context, event *Event) error {
		received <- event
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), EventRestockRecommended, nil))

	select {
	case event := <-received:
		t.Fatalf("unexpected event %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBusLogsHandlerErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bus := NewEventBus("forecast-core", logger)

	done := make(chan struct{})
	bus.Subscribe(EventForecastGenerated, func(ctx context.Context, event *Event) error {
		defer close(done)
		return errors.New("handler failed")
	})

	require.NoError(t, bus.Publish(context.Background(), EventForecastGenerated, ForecastGenerated{ProductID: "p1"}))
	<-done

	assert.Eventually(t, func() bool {
		entry := hook.LastEntry()
		return entry != nil && entry.Level == logrus.ErrorLevel
	}, time.Second, 10*time.Millisecond)
}
