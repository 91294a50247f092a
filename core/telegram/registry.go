package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/estatebot/core/logger"
	"github.com/m3rciful/estatebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and callbacks.
type Registry struct {
	commands         map[string]commands.Command
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown callbacks are acknowledged silently.
func NewRegistry() *Registry {
	return &Registry{
		commands:         make(map[string]commands.Command),
		callbacks:        make(map[string]tele.HandlerFunc),
		callbackNotFound: func(tele.Context) error { return nil },
	}
}

// RegisterCommand adds a command. name must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		return fmt.Errorf("register command %q: handler and description are required", name)
	case !strings.HasPrefix(name, "/"):
		return fmt.Errorf("register command %q: missing slash prefix", name)
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return fmt.Errorf("command already registered: %s", name)
	}
	r.commands[name] = cmd
	return nil
}

// ListCommands returns the menu for lang sorted by name, without hidden and admin-only commands if visibleOnly.
// An empty lang selects the default descriptions.
func (r *Registry) ListCommands(visibleOnly bool, lang string) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{
			Text:        strings.TrimPrefix(name, "/"),
			Description: meta.DescriptionFor(lang),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// MenuLanguages returns every language code some command is localized for.
func (r *Registry) MenuLanguages() []string {
	seen := map[string]struct{}{}
	for _, meta := range r.commands {
		for lang := range meta.Localized {
			seen[lang] = struct{}{}
		}
	}
	langs := make([]string, 0, len(seen))
	for l := range seen {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback maps a button unique to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback safely returns handler by key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// SetTextFallback sets the handler for plain text that is not a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// CommandSetter is the part of *tele.Bot used to publish the menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the default menu and one menu per localized language.
// Failures are logged; the bot works without a menu.
func InitBotCommands(bot CommandSetter, reg *Registry) {
	publish := func(lang string, opts ...interface{}) {
		list := reg.ListCommands(true, lang)
		if err := bot.SetCommands(append([]interface{}{list}, opts...)...); err != nil {
			logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands",
				slog.String("status", "fail"),
				slog.String("lang", lang),
				slog.String("err", err.Error()),
			)
			return
		}
		logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.commands",
			slog.String("status", "ok"),
			slog.String("lang", lang),
			slog.Int("commands", len(list)),
		)
	}
	publish("")
	for _, lang := range reg.MenuLanguages() {
		publish(lang, lang)
	}
}
