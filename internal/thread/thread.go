// Package thread keeps the optimistic, client-side view of the conversation.
//
// A Thread holds two kinds of entries: Pending placeholders for messages
// the user just typed, and Persisted messages backed by store ids. They use
// different id types, so a placeholder id can never be handed to the
// services layer. Status events from the notifier patch persisted entries
// forward only.
package thread

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/notify"
)

// PendingID identifies a placeholder. It is never a store id.
type PendingID string

// Entry is either a Pending or a Persisted message.
type Entry interface {
	entry()
}

// Pending is a placeholder shown while a send is in flight. Its status is
// always "sending".
type Pending struct {
	ID        PendingID
	Text      string
	Timestamp string
	Status    domain.Status
}

// Persisted is a message confirmed by the store.
type Persisted struct {
	domain.MessageView
}

func (Pending) entry()   {}
func (Persisted) entry() {}

// Subscriber is the part of the notifier a Thread attaches to.
type Subscriber interface {
	Subscribe(notify.Handler) (unsubscribe func())
}

// Thread is safe for concurrent use; Apply is typically called from the
// scheduler's goroutines.
type Thread struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty Thread. now stamps placeholders; nil means time.Now.
func New(now func() time.Time) *Thread {
	if now == nil {
		now = time.Now
	}
	return &Thread{now: now}
}

// AddPending appends a placeholder for text and returns its id.
func (t *Thread) AddPending(text string) PendingID {
	id := PendingID(uuid.NewString())

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Pending{
		ID:        id,
		Text:      text,
		Timestamp: t.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Status:    domain.StatusSending,
	})
	return id
}

// Confirm replaces placeholder id with the stored message m, keeping its
// position. sender, when known, fills the sender fields. If m is already
// listed (a reload won the race) the placeholder is just dropped. It reports
// whether the placeholder existed.
func (t *Thread) Confirm(id PendingID, m domain.Message, sender *domain.User) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.pendingIndex(id)
	if i < 0 {
		return false
	}
	if t.persistedIndex(m.ID) >= 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		return true
	}

	v := domain.MessageView{Message: m}
	if sender != nil {
		name, img := sender.Name, sender.ProfileImage
		v.SenderName = &name
		v.SenderProfileImage = &img
	}
	t.entries[i] = Persisted{MessageView: v}
	return true
}

// Discard drops a placeholder whose send failed.
func (t *Thread) Discard(id PendingID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.pendingIndex(id)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Apply moves a persisted message to ev.Status if that is a forward step.
// Events for unknown ids and regressions are ignored.
func (t *Thread) Apply(ev notify.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.persistedIndex(ev.MessageID)
	if i < 0 {
		return false
	}
	p := t.entries[i].(Persisted)
	if !p.Status.Advances(ev.Status) {
		return false
	}
	p.Status = ev.Status
	t.entries[i] = p
	return true
}

// Remove drops the persisted message id.
func (t *Thread) Remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.persistedIndex(id)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Load replaces the persisted entries with msgs. Placeholders still in
// flight are kept after them.
func (t *Thread) Load(msgs []domain.MessageView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(msgs)+len(t.entries))
	for _, m := range msgs {
		out = append(out, Persisted{MessageView: m})
	}
	for _, e := range t.entries {
		if p, ok := e.(Pending); ok {
			out = append(out, p)
		}
	}
	t.entries = out
}

// Entries returns a snapshot in display order.
func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Attach applies every event published on sub until the returned function
// is called.
func (t *Thread) Attach(sub Subscriber) (detach func()) {
	return sub.Subscribe(func(ev notify.Event) { t.Apply(ev) })
}

func (t *Thread) pendingIndex(id PendingID) int {
	for i, e := range t.entries {
		if p, ok := e.(Pending); ok && p.ID == id {
			return i
		}
	}
	return -1
}

func (t *Thread) persistedIndex(id int64) int {
	for i, e := range t.entries {
		if p, ok := e.(Persisted); ok && p.ID == id {
			return i
		}
	}
	return -1
}
