package handlers

import (
	"context"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/notify"
	"github.com/tbourn/thoughts-chat/internal/search"
)

//
// Service contracts (context-aware)
//

// UserService manages the local profile.
type UserService interface {
	// Create validates and stores a new profile.
	Create(ctx context.Context, name, about, subtitle, profileImage string) (*domain.User, error)
	// Get returns the profile or nil when absent.
	Get(ctx context.Context, id int64) (*domain.User, error)
	// Update merges the set fields of patch; false means nothing changed.
	Update(ctx context.Context, id int64, patch domain.UserPatch) (bool, error)
}

// MessageService sends, lists and deletes messages.
type MessageService interface {
	// Send stores a message with status "sent" and schedules its transitions.
	Send(ctx context.Context, text string, userID int64) (*domain.Message, error)
	// List returns every message with its sender, oldest first.
	List(ctx context.Context) ([]domain.MessageView, error)
	// Delete cancels pending transitions and removes the message.
	Delete(ctx context.Context, id int64) (bool, error)
	// Stats returns the message count and latest change time.
	Stats(ctx context.Context) (domain.Stats, error)
	// Search ranks messages against a free-text query.
	Search(ctx context.Context, query string, k int) ([]search.Result, error)
}

// EventSource streams status changes until ctx ends.
type EventSource interface {
	Stream(ctx context.Context, buf int) <-chan notify.Event
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the chat API.
type Handlers struct {
	users  UserService
	msgs   MessageService
	events EventSource

	// eventBuffer is the per-connection queue of the event stream.
	eventBuffer int
}

// New binds handlers to the given services. eventBuffer below 1 is raised
// to 1.
func New(users UserService, msgs MessageService, events EventSource, eventBuffer int) *Handlers {
	if eventBuffer < 1 {
		eventBuffer = 1
	}
	return &Handlers{users: users, msgs: msgs, events: events, eventBuffer: eventBuffer}
}
