package bus

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultBuffer is the per-subscription queue length.
	DefaultBuffer = 64

	// DefaultDeliveryTimeout bounds how long Publish waits on a full
	// subscriber for a message that must not be dropped.
	DefaultDeliveryTimeout = 5 * time.Second
)

// Bus fans out messages from publishers to subscribers in process.
//
// Progress ticks and player state snapshots are dropped for a subscriber
// whose queue is full, since a newer one follows. Every other message waits
// up to the delivery timeout for room in the queue.
//
// Example:
//
//	b := bus.New(0)
//	sub := b.Subscribe(bus.KindExportProgress, bus.KindExportComplete)
//	defer b.Unsubscribe(sub)
//	b.Publish(bus.ExportProgress{Progress: 50, Message: "Recording"})
//	msg := <-sub.C
type Bus struct {
	buffer  int
	timeout time.Duration

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	dropped atomic.Int64
}

// Subscription receives the messages it subscribed to on C. C is closed by
// Unsubscribe or Close.
type Subscription struct {
	C     chan Message
	kinds []Kind
}

// Option configures a Bus.
type Option func(*Bus)

// WithDeliveryTimeout sets how long a message that must not be dropped
// waits for a full subscriber. A non-positive d keeps the default.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// New creates a bus. A non-positive buffer selects DefaultBuffer.
func New(buffer int, opts ...Option) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	b := &Bus{buffer: buffer, timeout: DefaultDeliveryTimeout, subs: make(map[*Subscription]struct{})}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Lossy reports whether messages of kind k may be dropped for a slow
// subscriber.
func (k Kind) Lossy() bool {
	return k == KindExportProgress || k == KindPlayerState
}

// Subscribe registers a subscriber for the given kinds, or for every message
// when no kind is given. Subscribing to a closed bus returns a subscription
// whose channel is already closed.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	s := &Subscription{C: make(chan Message, b.buffer), kinds: slices.Clone(kinds)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.C)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. It is safe to call more than
// once.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.C)
}

// Publish delivers m to every interested subscriber and returns how many
// received it. For a kind that is not Lossy, Publish may block up to the
// delivery timeout per full subscriber.
func (b *Bus) Publish(m Message) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	kind := m.Kind()
	delivered := 0
	for s := range b.subs {
		if !s.wants(kind) {
			continue
		}
		select {
		case s.C <- m:
			delivered++
			continue
		default:
		}
		if kind.Lossy() {
			b.dropped.Add(1)
			continue
		}

		if b.deliver(s, m) {
			delivered++
		} else {
			b.dropped.Add(1)
		}
	}
	return delivered
}

func (b *Bus) deliver(s *Subscription, m Message) bool {
	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case s.C <- m:
		return true
	case <-timer.C:
		return false
	}
}

// Dropped returns how many deliveries were dropped for slow subscribers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close unsubscribes everyone. Later publishes deliver nothing.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.C)
	}
	clear(b.subs)
}

func (s *Subscription) wants(k Kind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, k)
}
