// Package app wires the listing bot: configuration, storage, the dialogue
// engine and its Telegram routes.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/estatebot/core/bootstrap"
	coreconfig "github.com/m3rciful/estatebot/core/config"
	"github.com/m3rciful/estatebot/core/logger"
	tg "github.com/m3rciful/estatebot/core/telegram"
	"github.com/m3rciful/estatebot/core/telegram/router"
	"github.com/m3rciful/estatebot/core/telegram/state"
	"github.com/m3rciful/estatebot/core/telegram/ui"
	"github.com/m3rciful/estatebot/internal/bot"
	"github.com/m3rciful/estatebot/internal/conversation"
	"github.com/m3rciful/estatebot/internal/i18n"
	"github.com/m3rciful/estatebot/internal/journal"
)

// App holds everything built at startup.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	engine   *conversation.Engine
	handler  *bot.Handler
	registry *tg.Registry
}

// Options lets tests replace the bootstrap pipeline.
type Options struct {
	Bootstrap func(context.Context, bootstrap.Options) (*bootstrap.Result, error)
}

// Bootstrap builds the App from cfg using the default pipeline.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	return New(ctx, cfg, Options{})
}

// New builds the App. The journal is wired only when the database is enabled.
func New(ctx context.Context, cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	run := opts.Bootstrap
	if run == nil {
		run = bootstrap.Run
	}
	infra, err := run(ctx, bootstrap.Options{
		Config:        &cfg.Config,
		Database:      cfg.Database,
		Migrations:    journal.Migrations,
		MigrationsDir: journal.MigrationsDir,
	})
	if err != nil {
		return nil, err
	}

	app, err := assemble(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	logger.Info(ctx, "app", "app.bootstrap",
		slog.String("status", "ok"),
		slog.Bool("journal", infra.DB != nil),
		slog.Int64("operator_chat", cfg.Operator.ChatID),
	)
	return app, nil
}

func assemble(cfg *Config, infra *bootstrap.Result) (*App, error) {
	catalog, err := i18n.Default()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	engineOpts := conversation.Options{
		Store:    state.NewMemoryStore[conversation.Session](),
		Catalog:  catalog,
		Operator: cfg.Operator.ChatID,
	}
	handlerOpts := bot.Options{Catalog: catalog}
	if infra != nil && infra.DB != nil {
		repo := journal.New(infra.DB)
		engineOpts.Recorder = repo
		handlerOpts.Journal = repo
	}

	engine, err := conversation.NewEngine(engineOpts)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	handlerOpts.Engine = engine
	handler, err := bot.New(handlerOpts)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	reg := tg.NewRegistry()
	if err := handler.Register(reg); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	return &App{
		cfg:      cfg,
		infra:    infra,
		engine:   engine,
		handler:  handler,
		registry: reg,
	}, nil
}

// CoreConfig exposes the core section.
func (a *App) CoreConfig() *coreconfig.Config {
	return &a.cfg.Config
}

// Registry returns the command and callback registry.
func (a *App) Registry() *tg.Registry {
	return a.registry
}

// TelegramRunOptions describes middlewares and routes for the runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.CoreConfig()
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, fallbackRoutes(a.registry, a.handler)...)

	return tg.RunOptions{
		Config:            core,
		Registry:          a.registry,
		DispatcherOptions: tg.DispatcherOptionsFrom(core.Sender),
		Middlewares:       tg.DefaultMiddlewares(core, nil),
		Routes:            routes,
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			logger.Info(ctx, "app", "app.stats",
				slog.Int("active_sessions", a.engine.ActiveSessions()),
				slog.Uint64("failed_deliveries", a.handler.FailedDeliveries()),
			)
			return nil
		},
	}, nil
}

// fallbackRoutes routes button presses, text and media; fb answers what nothing else claims.
func fallbackRoutes(reg *tg.Registry, fb ui.FallbackProvider) []tg.Route {
	routes := []tg.Route{router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
	})}
	return append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownMedia: fb.UnknownMedia(),
	})...)
}

// Close waits for pending journal writes and releases the database handle.
func (a *App) Close() error {
	a.engine.Wait()
	return a.infra.Close()
}
