package controller

import (
	"sync"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// busQueueDepth bounds how many messages a subscriber may lag behind before
// it is forced to skip forward. The teacher's RTP channel helper
// (utils.go's pushRTPChannel / clearRTPChannel) uses the same
// drop-when-full, keep-draining shape for its per-client channel; the
// control bus generalizes it to publish/subscribe with an explicit skip
// count instead of a silent drop.
const busQueueDepth = 256

// Bus is a multi-producer, multi-consumer broadcast of control messages.
// Publish order is preserved per subscriber (FIFO); a subscriber that falls
// behind receives a Skipped signal and resumes at the current head rather
// than blocking the publisher or being disconnected.
type Bus struct {
	mu   sync.Mutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	ch      chan wire.ControlMessage
	skipped chan int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

// Subscription is the consumer-facing handle returned by Subscribe.
type Subscription struct {
	id      int
	bus     *Bus
	ch      <-chan wire.ControlMessage
	skipped <-chan int
}

// Messages returns the channel of in-order control messages for this
// subscriber.
func (s *Subscription) Messages() <-chan wire.ControlMessage { return s.ch }

// Skipped returns a channel of lag signals: each value is how many messages
// were dropped from this subscriber's queue before it resumed at head.
func (s *Subscription) Skipped() <-chan int { return s.skipped }

// Unsubscribe removes the subscription from the bus. Safe to call more than
// once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs, s.id)
}

// Subscribe registers a new consumer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	sub := &subscription{
		ch:      make(chan wire.ControlMessage, busQueueDepth),
		skipped: make(chan int, 1),
	}
	b.subs[id] = sub
	return &Subscription{id: id, bus: b, ch: sub.ch, skipped: sub.skipped}
}

// Publish delivers msg to every current subscriber. A subscriber whose
// queue is full is skipped forward: its oldest queued message is dropped to
// make room, and a lag count is reported on its Skipped channel instead of
// blocking this call.
func (b *Bus) Publish(msg wire.ControlMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- msg:
			continue
		default:
		}

		// Queue full: only this goroutine (holding b.mu) ever writes to
		// sub.ch, so dropping one queued entry guarantees room for msg.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- msg
		reportSkip(sub, 1)
	}
}

func reportSkip(sub *subscription, n int) {
	select {
	case prev := <-sub.skipped:
		sub.skipped <- prev + n
	default:
		sub.skipped <- n
	}
}
