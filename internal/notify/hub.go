// Package notify delivers message status changes to interested observers.
//
// A Hub is an explicit registry: any number of subscribers can be attached
// and each one is detached with the function returned by Subscribe. The
// publisher never blocks on slow observers when they use Stream.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// Event reports that a persisted message moved to Status at time At.
type Event struct {
	MessageID int64         `json:"message_id"`
	Status    domain.Status `json:"status"`
	At        time.Time     `json:"at"`
}

// Handler observes status events.
type Handler func(Event)

type subscriber struct {
	id int64
	fn Handler
}

// Hub fans events out to its subscribers. The zero value is ready to use.
type Hub struct {
	mu     sync.RWMutex
	nextID int64
	subs   []subscriber
}

// NewHub returns an empty Hub.
func NewHub() *Hub { return &Hub{} }

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (h *Hub) Subscribe(fn Handler) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every current subscriber with ev, in subscription order, on
// the caller's goroutine. It is a no-op when nobody is subscribed.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	subs := h.subs
	h.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Len returns the number of current subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stream subscribes a buffered channel of size buf. Events that do not fit
// in the buffer are dropped. The subscription ends and the channel is closed
// when ctx is done.
func (h *Hub) Stream(ctx context.Context, buf int) <-chan Event {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)

	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := h.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
