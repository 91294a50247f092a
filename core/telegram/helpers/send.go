package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/estatebot/core/logger"
	"github.com/m3rciful/estatebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Dispatcher returns the wired sender or nil.
func Dispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// Outgoing is one HTML message produced while handling an update.
type Outgoing struct {
	ChatID    int64
	Recipient string
	Text      string
	Markup    *tele.ReplyMarkup
	// Edit replaces the message whose button was pressed, falling back to a new message.
	Edit    bool
	OnError func(ctx context.Context, err error)
}

// Deliver sends out through the dispatcher, or inline when none is wired.
func Deliver(c tele.Context, out Outgoing) error {
	ctx := BuildContext(c)
	action := "send.html"
	if out.Edit {
		action = "edit.html"
	}
	run := func(ctx context.Context) error {
		return callWithin(ctx, func() error { return deliver(c, out) })
	}

	disp := Dispatcher()
	if disp == nil {
		err := run(ctx)
		if err != nil && out.OnError != nil {
			out.OnError(ctx, err)
		}
		return err
	}
	err := disp.Enqueue(ctx, sender.Job{
		Action:    action,
		ChatID:    out.ChatID,
		Recipient: out.Recipient,
		Run:       run,
		OnError:   out.OnError,
	})
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("recipient", out.Recipient),
			slog.String("err", err.Error()),
		)
		if err := run(ctx); err != nil {
			if out.OnError != nil {
				out.OnError(ctx, err)
			}
			return err
		}
		return nil
	}
	return err
}

// callWithin returns fn's result, or ctx's error once ctx is done.
// telebot takes no context, so an abandoned call finishes in the background.
func callWithin(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliver(c tele.Context, out Outgoing) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: out.Markup}
	if out.Edit {
		if cb := c.Callback(); cb != nil && cb.Message != nil {
			_, err := c.Bot().Edit(cb.Message, out.Text, opts)
			if err == nil || errors.Is(err, tele.ErrSameMessageContent) {
				return nil
			}
			logger.Debug(BuildContext(c), "tg.sender", "edit.fallback",
				slog.String("err", err.Error()),
			)
		}
	}
	_, err := c.Bot().Send(tele.ChatID(out.ChatID), out.Text, opts)
	return err
}
