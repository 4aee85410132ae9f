// Package services – MessageService
//
// This file implements MessageService, the application-level component that
// owns the lifecycle of chat messages. It validates and normalizes text,
// checks that the sender exists, persists the message with status "sent",
// and hands the id to the status scheduler, which advances it in the
// background. Deleting a message first cancels its pending transitions.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include message/user identifiers where applicable.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/scheduler"
	"github.com/tbourn/thoughts-chat/internal/search"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// TimestampLayout is the ISO-8601 form stored in Message.Timestamp
// (millisecond precision, UTC "Z").
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// StatusScheduler runs the background status pipeline of sent messages.
type StatusScheduler interface {
	Schedule(id int64, steps []scheduler.Step) bool
	Cancel(id int64) bool
}

// MessageService coordinates message persistence and status advancement.
type MessageService struct {
	Store     store.Store
	Scheduler StatusScheduler

	// MaxTextRunes caps message length in runes (0 disables).
	MaxTextRunes int

	// Now is the clock used for Message.Timestamp; nil means time.Now.
	Now func() time.Time

	// SearchOptions tune Search ranking.
	SearchOptions []search.Option
}

// Send validates text, stores the message as "sent" and schedules its
// status pipeline. It returns as soon as the message is stored.
func (s *MessageService) Send(ctx context.Context, text string, userID int64) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return nil, ErrTooLong
	}

	u, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	now := s.now()
	ts := now.Format(TimestampLayout)
	id, err := s.Store.InsertMessage(ctx, text, ts, userID, domain.StatusSent)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("message.id", id))

	if s.Scheduler != nil {
		s.Scheduler.Schedule(id, nil)
	}

	return &domain.Message{
		ID:        id,
		Text:      text,
		Timestamp: ts,
		Status:    domain.StatusSent,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// List returns every message with its sender, oldest first.
func (s *MessageService) List(ctx context.Context) ([]domain.MessageView, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	out, err := s.Store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("messages.count", len(out)))
	return out, nil
}

// Search ranks stored messages against query and returns up to k of them
// (search.DefaultK when k <= 0).
func (s *MessageService) Search(ctx context.Context, query string, k int) ([]search.Result, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.Int("search.k", k)),
	)
	defer span.End()

	query = strings.TrimSpace(norm.NFC.String(query))
	if query == "" {
		return nil, ErrEmptyQuery
	}
	all, err := s.Store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	out := search.Rank(all, query, k, s.SearchOptions...)
	span.SetAttributes(attribute.Int("search.hits", len(out)))
	return out, nil
}

// Delete cancels the pending transitions of id and removes the message. It
// reports whether the message existed.
func (s *MessageService) Delete(ctx context.Context, id int64) (bool, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("message.id", id)),
	)
	defer span.End()

	if s.Scheduler != nil {
		s.Scheduler.Cancel(id)
	}
	return s.Store.DeleteMessage(ctx, id)
}

// Stats returns the message count and latest change time.
func (s *MessageService) Stats(ctx context.Context) (domain.Stats, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	return s.Store.MessageStats(ctx)
}

// Advance writes a status change. Unknown ids are a no-op. It is the write
// step used by the scheduler.
func (s *MessageService) Advance(ctx context.Context, id int64, status domain.Status) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Advance",
		trace.WithAttributes(
			attribute.Int64("message.id", id),
			attribute.String("message.status", string(status)),
		),
	)
	defer span.End()

	if !status.Persistable() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.Store.UpdateMessageStatus(ctx, id, status)
}

func (s *MessageService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
