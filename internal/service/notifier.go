package service

import "sync"

// DefaultSubscriberBuffer is the channel depth given to each subscriber.
const DefaultSubscriberBuffer = 16

// Change announces that a client's collection was written.
type Change struct {
	Client     string `json:"-"`
	Collection string `json:"collection"`
	Version    int64  `json:"version"`
}

// Notifier fans out collection changes to subscribers of the same client.
// A subscriber whose buffer is full misses the change.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Change]struct{}
	buffer int
	closed bool
}

// NewNotifier creates a notifier with the given per-subscriber buffer.
func NewNotifier(buffer int) *Notifier {
	if buffer < 1 {
		buffer = DefaultSubscriberBuffer
	}
	return &Notifier{
		subs:   make(map[string]map[chan Change]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers interest in client's changes. The returned function
// unsubscribes and closes the channel; calling it again is a no-op. After
// Close the channel comes back already closed.
func (n *Notifier) Subscribe(client string) (<-chan Change, func()) {
	ch := make(chan Change, n.buffer)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	set, ok := n.subs[client]
	if !ok {
		set = make(map[chan Change]struct{})
		n.subs[client] = set
	}
	set[ch] = struct{}{}
	subscribersGauge.Inc()
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			// Close may already have released it.
			if _, ok := set[ch]; !ok {
				return
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(n.subs, client)
			}
			close(ch)
			subscribersGauge.Dec()
		})
	}
}

// Notify delivers c to every subscriber of c.Client without blocking.
func (n *Notifier) Notify(c Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs[c.Client] {
		select {
		case ch <- c:
		default:
			notificationsDroppedTotal.Inc()
		}
	}
}

// Close closes every subscriber channel and refuses new subscriptions, which
// ends all open change streams.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true

	for client, set := range n.subs {
		for ch := range set {
			delete(set, ch)
			close(ch)
			subscribersGauge.Dec()
		}
		delete(n.subs, client)
	}
}

// Subscribers returns how many subscribers client has.
func (n *Notifier) Subscribers(client string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[client])
}
