package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherPublish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers to every subscriber of the type", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		var first, second []Event
		dispatcher.Subscribe(EventTaskCreated, func(_ context.Context, e Event) error {
			first = append(first, e)
			return nil
		})
		dispatcher.Subscribe(EventTaskCreated, func(_ context.Context, e Event) error {
			second = append(second, e)
			return nil
		})
		dispatcher.Subscribe(EventTaskDeleted, func(_ context.Context, e Event) error {
			t.Fatal("handler for a different type must not fire")
			return nil
		})

		event := Event{ID: "evt-1", Type: EventTaskCreated, UserID: "user-1", Timestamp: time.Now()}
		require.NoError(t, dispatcher.Publish(ctx, event))
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		require.Equal(t, "evt-1", first[0].ID)
	})

	t.Run("a failing handler does not block the rest", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		var delivered int
		dispatcher.Subscribe(EventUserRegistered, func(context.Context, Event) error {
			return errors.New("handler down")
		})
		dispatcher.Subscribe(EventUserRegistered, func(context.Context, Event) error {
			delivered++
			return nil
		})

		require.NoError(t, dispatcher.Publish(ctx, Event{Type: EventUserRegistered}))
		require.Equal(t, 1, delivered)
	})

	t.Run("publishing without subscribers is a no-op", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		require.NoError(t, dispatcher.Publish(ctx, Event{Type: EventTaskStatusChanged}))
	})
}
