package app

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Subscription errors.
var (
	ErrSubscriberExists   = errors.New("subscriber id already exists")
	ErrSubscriberNotFound = errors.New("subscriber id not found")
	ErrBusClosed          = errors.New("update bus is closed")
)

// BusStats reports how many updates were published and how many stale
// updates were replaced before a subscriber read them.
type BusStats struct {
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// updateBus fans updates out with latest-value semantics. New subscribers
// start with the last published update.
type updateBus struct {
	mu     sync.Mutex
	subs   map[string]chan Update
	last   Update
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

func newUpdateBus(initial Update) *updateBus {
	return &updateBus{subs: make(map[string]chan Update), last: initial}
}

func (b *updateBus) subscribe(id string) (chan Update, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.subs[id]; exists {
		return nil, ErrSubscriberExists
	}

	ch := make(chan Update, 1)
	ch <- b.last
	b.subs[id] = ch
	return ch, nil
}

func (b *updateBus) unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, exists := b.subs[id]
	if !exists {
		return ErrSubscriberNotFound
	}
	delete(b.subs, id)
	close(ch)
	return nil
}

func (b *updateBus) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.last = u
	b.published.Add(1)
	for _, ch := range b.subs {
		b.send(ch, u)
	}
}

// send replaces a pending update with u. Callers hold b.mu, and only
// holders of b.mu send, so the second select always has room.
func (b *updateBus) send(ch chan Update, u Update) {
	select {
	case ch <- u:
		return
	default:
	}

	select {
	case <-ch:
		b.dropped.Add(1)
	default:
	}

	select {
	case ch <- u:
	default:
	}
}

func (b *updateBus) stats() BusStats {
	b.mu.Lock()
	n := len(b.subs)
	b.mu.Unlock()

	return BusStats{
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
		Subscribers: n,
	}
}

func (b *updateBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
