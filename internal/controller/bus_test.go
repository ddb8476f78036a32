package controller

import (
	"testing"
	"time"

	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInFIFOOrder(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()

	bus.Publish(wire.BackOrScreenOn{Action: 0})
	bus.Publish(wire.BackOrScreenOn{Action: 1})
	bus.Publish(wire.BackOrScreenOn{Action: 2})

	for i := 0; i < 3; i++ {
		select {
		case msg := <-sub.Messages():
			assert.Equal(t, wire.BackOrScreenOn{Action: uint8(i)}, msg)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestBusFanOutToMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(wire.RotateDevice{})

	for _, sub := range []*Subscription{a, b} {
		select {
		case <-sub.Messages():
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive message")
		}
	}
}

func TestBusLaggingSubscriberSkipsForward(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()

	for i := 0; i < busQueueDepth+5; i++ {
		bus.Publish(wire.ResetVideo{})
	}

	select {
	case skipped := <-sub.Skipped():
		assert.Greater(t, skipped, 0)
	case <-time.After(time.Second):
		t.Fatal("expected a skip signal")
	}

	// Subscriber should still be able to drain remaining messages without
	// blocking the publisher.
	drained := 0
	for {
		select {
		case <-sub.Messages():
			drained++
		default:
			goto done
		}
	}
done:
	assert.LessOrEqual(t, drained, busQueueDepth)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	sub.Unsubscribe()

	bus.Publish(wire.RotateDevice{})

	select {
	case <-sub.Messages():
		t.Fatal("unsubscribed consumer should not receive messages")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeReturnsDistinctIDs(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	require.NotEqual(t, a.id, b.id)
}
