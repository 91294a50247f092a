// Package bot translates Telegram updates into conversation events and
// delivers the resulting messages.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/estatebot/core/logger"
	tg "github.com/m3rciful/estatebot/core/telegram"
	"github.com/m3rciful/estatebot/core/telegram/callbacks"
	"github.com/m3rciful/estatebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/estatebot/core/telegram/helpers"
	"github.com/m3rciful/estatebot/core/telegram/keyboard"
	"github.com/m3rciful/estatebot/core/telegram/middleware"
	"github.com/m3rciful/estatebot/core/telegram/netutil"
	"github.com/m3rciful/estatebot/core/telegram/ui"
	"github.com/m3rciful/estatebot/internal/conversation"
	"github.com/m3rciful/estatebot/internal/i18n"

	tele "gopkg.in/telebot.v4"
)

var _ ui.FallbackProvider = (*Handler)(nil)

// Conversation is the engine the handler drives.
type Conversation interface {
	Handle(ctx context.Context, ev conversation.Event) (conversation.Reply, error)
	ActiveSessions() int
}

// Counter reports how many submissions were journaled.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Options configures a Handler.
type Options struct {
	Engine  Conversation
	Catalog *i18n.Catalog
	// Journal is nil when the database is disabled.
	Journal Counter
	// Deliver is overridable in tests.
	Deliver func(c tele.Context, out tghelpers.Outgoing) error
}

// Handler owns the Telegram side of the listing dialogue.
type Handler struct {
	engine  Conversation
	catalog *i18n.Catalog
	journal Counter
	deliver func(c tele.Context, out tghelpers.Outgoing) error

	failedDeliveries atomic.Uint64
}

// New builds a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Engine == nil || opts.Catalog == nil {
		return nil, fmt.Errorf("bot: engine and catalog are required")
	}
	deliver := opts.Deliver
	if deliver == nil {
		deliver = tghelpers.Deliver
	}
	return &Handler{
		engine:  opts.Engine,
		catalog: opts.Catalog,
		journal: opts.Journal,
		deliver: deliver,
	}, nil
}

// Register adds commands, choice callbacks and the text fallback to reg.
func (h *Handler) Register(reg *tg.Registry) error {
	start, err := h.command(i18n.CommandStart, h.Start)
	if err != nil {
		return err
	}
	cancel, err := h.command(i18n.CommandCancel, h.Cancel)
	if err != nil {
		return err
	}
	cmds := map[string]commands.Command{
		"/start":  start,
		"/cancel": cancel,
		"/stats": {
			Handler:     h.Stats,
			Description: "Bot statistics",
			AdminOnly:   true,
			Hidden:      true,
		},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}
	for _, group := range []conversation.ChoiceGroup{
		conversation.GroupLanguage,
		conversation.GroupApartmentType,
		conversation.GroupApartmentCondition,
	} {
		if err := reg.RegisterCallback(string(group), h.Choice); err != nil {
			return err
		}
	}
	reg.SetTextFallback(h.Text)
	reg.SetCallbackNotFound(h.UnknownCallback())
	return nil
}

func (h *Handler) command(key i18n.Key, fn tele.HandlerFunc) (commands.Command, error) {
	cmd := commands.Command{Handler: fn, Localized: map[string]string{}}
	for _, lang := range h.catalog.Languages() {
		text, err := h.catalog.Resolve(lang, key)
		if err != nil {
			return commands.Command{}, err
		}
		cmd.Localized[string(lang)] = text
		if lang == i18n.Fallback {
			cmd.Description = text
		}
	}
	return cmd, nil
}

// Start handles /start.
func (h *Handler) Start(c tele.Context) error {
	userID, chatID := tghelpers.IDs(c)
	return h.dispatch(c, conversation.Start(userID, chatID))
}

// Cancel handles /cancel.
func (h *Handler) Cancel(c tele.Context) error {
	userID, chatID := tghelpers.IDs(c)
	return h.dispatch(c, conversation.Cancel(userID, chatID))
}

// Text handles plain text answers. Unregistered commands are not answers.
func (h *Handler) Text(c tele.Context) error {
	if isCommand(c) {
		return h.unsupported(c)
	}
	userID, chatID := tghelpers.IDs(c)
	return h.dispatch(c, conversation.Text(userID, chatID, strings.TrimSpace(c.Text())))
}

func isCommand(c tele.Context) bool {
	if strings.HasPrefix(strings.TrimSpace(c.Text()), "/") {
		return true
	}
	if m := c.Update().Message; m != nil {
		for _, e := range m.Entities {
			if e.Type == tele.EntityCommand && e.Offset == 0 {
				return true
			}
		}
	}
	return false
}

// Choice handles a press on one of the dialogue keyboards.
func (h *Handler) Choice(c tele.Context) error {
	userID, chatID := tghelpers.IDs(c)
	return h.dispatch(c, conversation.Choice(userID, chatID, callbacks.CallbackPayload(c)))
}

// UnknownMedia re-prompts when a photo, file or sticker arrives instead of an answer.
func (h *Handler) UnknownMedia() tele.HandlerFunc {
	return h.unsupported
}

// UnknownCallback re-prompts when a button of a forgotten keyboard is pressed.
func (h *Handler) UnknownCallback() tele.HandlerFunc {
	return h.unsupported
}

func (h *Handler) unsupported(c tele.Context) error {
	userID, chatID := tghelpers.IDs(c)
	return h.dispatch(c, conversation.Unsupported(userID, chatID))
}

// Stats reports runtime counters to the admin.
func (h *Handler) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	journal := "disabled"
	if h.journal != nil {
		if n, err := h.journal.Count(ctx); err != nil {
			journal = "unavailable"
			logger.LogEvent(ctx, logger.Journal, slog.LevelWarn, "journal.count",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		} else {
			journal = fmt.Sprintf("%d submissions", n)
		}
	}
	text := fmt.Sprintf("Active sessions: %d\nFailed deliveries: %d\nJournal: %s",
		h.engine.ActiveSessions(), h.failedDeliveries.Load(), journal)
	if d := tghelpers.Dispatcher(); d != nil {
		text += fmt.Sprintf("\nQueued sends: %d ok, %d failed", d.Sent(), d.Failed())
	}
	_, chatID := tghelpers.IDs(c)
	middleware.CountQueued(c, false)
	return h.deliver(c, tghelpers.Outgoing{ChatID: chatID, Recipient: "admin", Text: text})
}

// FailedDeliveries returns how many outbound messages could not be delivered.
func (h *Handler) FailedDeliveries() uint64 {
	return h.failedDeliveries.Load()
}

// dispatch runs one engine turn and hands its messages to the sender.
// Delivery is best effort: the turn is already committed when it starts.
func (h *Handler) dispatch(c tele.Context, ev conversation.Event) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := h.engine.Handle(ctx, ev)
	if err != nil {
		return err
	}
	edit := ev.Kind == conversation.KindChoice && reply.Outcome == conversation.OutcomeAdvanced
	for i, msg := range reply.Messages {
		out := tghelpers.Outgoing{
			ChatID:    msg.ChatID,
			Recipient: string(msg.Role),
			Text:      msg.Text,
			Markup:    markup(msg),
			Edit:      edit && i == 0 && msg.Role == conversation.RoleUser,
			OnError:   h.deliveryFailed(msg.Role),
		}
		middleware.CountQueued(c, out.Markup != nil)
		// failures are reported through OnError
		_ = h.deliver(c, out)
	}
	return nil
}

func (h *Handler) deliveryFailed(role conversation.Role) func(ctx context.Context, err error) {
	return func(ctx context.Context, err error) {
		h.failedDeliveries.Add(1)
		logger.LogEvent(ctx, logger.Conv, slog.LevelError, "delivery.fail",
			slog.String("status", "fail"),
			slog.String("recipient", string(role)),
			slog.String("error_kind", netutil.Classify(err)),
		)
	}
}

func markup(msg conversation.Message) *tele.ReplyMarkup {
	if len(msg.Buttons) == 0 {
		return nil
	}
	labels := make([]string, len(msg.Buttons))
	tokens := make([]string, len(msg.Buttons))
	for i, b := range msg.Buttons {
		labels[i], tokens[i] = b.Label, b.Token
	}
	return keyboard.Choices(string(msg.Group), labels, tokens)
}
