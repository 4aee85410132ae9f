package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/thoughts-chat/internal/config"
	"github.com/tbourn/thoughts-chat/internal/scheduler"
	"github.com/tbourn/thoughts-chat/internal/services"
)

// Options are optional overrides for NewClient.
type Options struct {
	Clock  scheduler.Clock
	Logger *zerolog.Logger
}

// NewClient opens the store selected by cfg, builds the chat client over it
// and seeds the default profile. The caller owns the returned client and
// must Close it.
func NewClient(ctx context.Context, cfg config.Config, opts Options) (*services.Client, error) {
	st, err := OpenStore(ctx, StoreOptions{StoreConfig: cfg.Store, Tracing: cfg.OTEL.Enabled})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	c := services.NewClient(st, services.ClientOptions{
		DeliveredAfter:   cfg.Pipeline.DeliveredAfter,
		ReadAfter:        cfg.Pipeline.ReadAfter,
		MaxTextRunes:     cfg.Chat.MaxMessageRunes,
		DefaultUserName:  cfg.Chat.DefaultUserName,
		DefaultUserAbout: cfg.Chat.DefaultUserAbout,
		Clock:            opts.Clock,
		Logger:           opts.Logger,
	})

	if err := c.Init(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	log.Info().Str("backend", c.Backend()).Msg("storage ready")
	return c, nil
}
