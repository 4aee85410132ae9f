// Package services – Client
//
// Client is the facade the UI and the HTTP adapter talk to. It wires the
// record store, the status scheduler and the notifier together and exposes
// the six chat operations. Every id it accepts is a persisted id; optimistic
// placeholders live in package thread and never reach this layer.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/notify"
	"github.com/tbourn/thoughts-chat/internal/scheduler"
	"github.com/tbourn/thoughts-chat/internal/search"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// ClientOptions tunes a Client. Zero values select the defaults.
type ClientOptions struct {
	DeliveredAfter time.Duration
	ReadAfter      time.Duration
	MaxTextRunes   int

	DefaultUserName  string
	DefaultUserAbout string

	// Clock drives timestamps and transitions; nil means the real clock.
	Clock scheduler.Clock
	// Logger receives background failures; nil means the global logger.
	Logger *zerolog.Logger
}

// Client composes the chat services over one store.
type Client struct {
	Users    *UserService
	Messages *MessageService

	store store.Store
	hub   *notify.Hub
	sched *scheduler.Scheduler
}

// NewClient builds a Client over st. Close releases the store.
func NewClient(st store.Store, opts ClientOptions) *Client {
	if opts.DeliveredAfter <= 0 {
		opts.DeliveredAfter = time.Second
	}
	if opts.ReadAfter <= 0 {
		opts.ReadAfter = 3 * time.Second
	}
	clock := opts.Clock
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	users := NewUserService(st)
	if opts.DefaultUserName != "" {
		users.DefaultName = opts.DefaultUserName
	}
	if opts.DefaultUserAbout != "" {
		users.DefaultAbout = opts.DefaultUserAbout
	}

	hub := notify.NewHub()
	msgs := &MessageService{
		Store:        st,
		MaxTextRunes: opts.MaxTextRunes,
		Now:          clock.Now,
	}
	sched := scheduler.New(msgs.Advance, hub,
		scheduler.WithClock(clock),
		scheduler.WithLogger(logger),
		scheduler.WithSteps(scheduler.DefaultSteps(opts.DeliveredAfter, opts.ReadAfter)),
	)
	msgs.Scheduler = sched

	return &Client{
		Users:    users,
		Messages: msgs,
		store:    st,
		hub:      hub,
		sched:    sched,
	}
}

// Init seeds the default profile when the store has no user.
func (c *Client) Init(ctx context.Context) error {
	u, err := c.Users.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		log.Info().Int64("user_id", u.ID).Str("backend", c.Backend()).Msg("default user created")
	}
	return nil
}

// CreateUser stores a profile and returns its id.
func (c *Client) CreateUser(ctx context.Context, name, about, subtitle, profileImage string) (int64, error) {
	u, err := c.Users.Create(ctx, name, about, subtitle, profileImage)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// GetUser returns the user or nil when absent.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return c.Users.Get(ctx, id)
}

// UpdateUser merges patch into the user; false means nothing was updated.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (bool, error) {
	return c.Users.Update(ctx, id, patch)
}

// SendMessage stores text as "sent" and starts its status pipeline.
func (c *Client) SendMessage(ctx context.Context, text string, userID int64) (*domain.Message, error) {
	return c.Messages.Send(ctx, text, userID)
}

// GetAllMessages returns every message with its sender, oldest first.
func (c *Client) GetAllMessages(ctx context.Context) ([]domain.MessageView, error) {
	return c.Messages.List(ctx)
}

// DeleteMessage removes a message; false means it did not exist.
func (c *Client) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	return c.Messages.Delete(ctx, id)
}

// SearchMessages ranks messages against query, best first.
func (c *Client) SearchMessages(ctx context.Context, query string, k int) ([]search.Result, error) {
	return c.Messages.Search(ctx, query, k)
}

// Subscribe registers fn for status changes and returns its unsubscribe.
func (c *Client) Subscribe(fn notify.Handler) func() {
	return c.hub.Subscribe(fn)
}

// Hub exposes the notifier for stream consumers.
func (c *Client) Hub() *notify.Hub { return c.hub }

// Backend names the active storage backend.
func (c *Client) Backend() string { return c.store.Backend() }

// Close stops the scheduler, waiting for in-flight writes, then closes the
// store.
func (c *Client) Close() error {
	c.sched.Stop()
	return c.store.Close()
}
