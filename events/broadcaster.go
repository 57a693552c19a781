package events

import "sync"

// Subscription receives published events on C until it is unsubscribed.
type Subscription struct {
	C  <-chan Event
	ch chan Event
}

// Broadcaster delivers each published event to every current subscription.
// Delivery never blocks: a subscription whose buffer is full loses the event.
// There is no replay for late subscribers.
type Broadcaster struct {
	mut    sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription with a buffer of the given size.
// Subscribing to a closed broadcaster returns an already closed subscription.
func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	if buffer < 0 {
		buffer = 0
	}
	var ch = make(chan Event, buffer)
	var s = &Subscription{C: ch, ch: ch}
	b.mut.Lock()
	defer b.mut.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	if b.subs == nil {
		b.subs = make(map[*Subscription]struct{})
	}
	b.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. Removing an unknown subscription is a no-op.
func (b *Broadcaster) Unsubscribe(s *Subscription) {
	b.mut.Lock()
	defer b.mut.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Publish offers e to every subscription and returns how many accepted it.
func (b *Broadcaster) Publish(e Event) (delivered int) {
	b.mut.RLock()
	defer b.mut.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- e:
			delivered++
		default:
		}
	}
	return
}

// Len returns the number of subscriptions.
func (b *Broadcaster) Len() int {
	b.mut.RLock()
	defer b.mut.RUnlock()
	return len(b.subs)
}

// Close unsubscribes everybody. Later subscriptions are closed immediately.
func (b *Broadcaster) Close() {
	b.mut.Lock()
	defer b.mut.Unlock()
	for s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	b.closed = true
}
