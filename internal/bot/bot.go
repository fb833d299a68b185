package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uoscommunity/scorebot/internal/telegram"
)

const pollErrorDelay = 5 * time.Second

// Messenger is the Bot API surface used by the polling loop.
type Messenger interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Bot long-polls for updates and answers them with a bounded number of concurrent handlers.
type Bot struct {
	messenger   Messenger
	handler     *Handler
	workers     int
	pollTimeout time.Duration
}

// New creates a Bot.
func New(messenger Messenger, handler *Handler, workers int, pollTimeout time.Duration) *Bot {
	if messenger == nil {
		panic("bot.New: messenger is nil")
	}
	if handler == nil {
		panic("bot.New: handler is nil")
	}
	if workers < 1 {
		workers = 1
	}
	return &Bot{
		messenger:   messenger,
		handler:     handler,
		workers:     workers,
		pollTimeout: pollTimeout,
	}
}

// Run polls until ctx is cancelled or the token is rejected. In-flight handlers finish before it returns.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("Bot: starting", "workers", b.workers, "poll_timeout", b.pollTimeout)

	var g errgroup.Group
	g.SetLimit(b.workers)
	defer g.Wait() //nolint:errcheck

	var offset int64
	for {
		if ctx.Err() != nil {
			slog.Info("Bot: shutting down")
			return nil
		}

		updates, err := b.messenger.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Bot: shutting down")
				return nil
			}
			if errors.Is(err, telegram.ErrUnauthorized) {
				return err
			}
			slog.Warn("Bot: polling failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollErrorDelay):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			g.Go(func() error {
				b.respond(ctx, msg)
				return nil
			})
		}
	}
}

func (b *Bot) respond(ctx context.Context, msg *telegram.Message) {
	reply := b.handler.Handle(ctx, msg)
	if reply == "" {
		return
	}
	if err := b.messenger.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		slog.Error("Bot: sending reply failed", "chat", msg.Chat.ID, "error", err)
	}
}
