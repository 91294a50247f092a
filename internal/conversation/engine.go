package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/estatebot/core/logger"
	"github.com/m3rciful/estatebot/core/telegram/state"
	"github.com/m3rciful/estatebot/internal/i18n"
)

// Role tells the transport who a message is meant for.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
)

// Message is one outbound text. Buttons are rendered as an inline keyboard, one per row.
type Message struct {
	ChatID  int64
	Role    Role
	Text    string
	Buttons []i18n.Button
	Group   ChoiceGroup
}

// Outcome summarizes what a turn did.
type Outcome string

const (
	OutcomeStarted    Outcome = "started"
	OutcomeRestarted  Outcome = "restarted"
	OutcomeAdvanced   Outcome = "advanced"
	OutcomeReprompted Outcome = "reprompted"
	OutcomeStale      Outcome = "stale"
	OutcomeCompleted  Outcome = "completed"
	OutcomeCancelled  Outcome = "cancelled"
)

// Reply is the result of one handled event.
type Reply struct {
	Outcome  Outcome
	State    State
	Messages []Message
}

// Submission is a completed listing handed to the Recorder.
type Submission struct {
	ID            uuid.UUID
	UserID        int64
	Language      i18n.Lang
	ApartmentType ApartmentType
	Answers       []Answer
	StartedAt     time.Time
	CompletedAt   time.Time
}

// Recorder keeps completed submissions. Failures are logged and never reach the user.
type Recorder interface {
	Record(ctx context.Context, s Submission) error
}

// Options configures an Engine.
type Options struct {
	Store    state.Store[Session]
	Catalog  *i18n.Catalog
	Operator int64

	// Recorder is optional.
	Recorder      Recorder
	RecordTimeout time.Duration
	Now           func() time.Time
}

// Engine drives sessions through the transition table.
type Engine struct {
	store         state.Store[Session]
	catalog       *i18n.Catalog
	operator      int64
	recorder      Recorder
	recordTimeout time.Duration
	now           func() time.Time

	recording sync.WaitGroup
}

// NewEngine validates opts and builds an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("conversation: nil session store")
	}
	if opts.Catalog == nil {
		return nil, errors.New("conversation: nil catalog")
	}
	if opts.Operator == 0 {
		return nil, errors.New("conversation: operator chat is required")
	}
	for _, b := range i18n.LanguageButtons {
		if !opts.Catalog.Supports(i18n.Lang(b.Token)) {
			return nil, fmt.Errorf("conversation: catalog has no %q texts for the language picker", b.Token)
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = 3 * time.Second
	}
	return &Engine{
		store:         opts.Store,
		catalog:       opts.Catalog,
		operator:      opts.Operator,
		recorder:      opts.Recorder,
		recordTimeout: opts.RecordTimeout,
		now:           opts.Now,
	}, nil
}

// ActiveSessions reports how many dialogues are in progress.
func (e *Engine) ActiveSessions() int {
	return e.store.Len()
}

// Handle processes one event for ev.UserID and returns the messages to deliver.
// Events of one user are serialized; the session is already persisted or
// destroyed when Handle returns, so delivery failures cannot roll it back.
func (e *Engine) Handle(ctx context.Context, ev Event) (Reply, error) {
	unlock := e.store.Lock(ev.UserID)
	defer unlock()

	if ev.Kind == KindStart {
		return e.start(ctx, ev)
	}

	sess, ok := e.store.Get(ev.UserID)
	if !ok {
		logger.LogEvent(ctx, logger.Conv, slog.LevelInfo, "conv.stale",
			slog.String("status", "stale"),
			slog.String("kind", ev.Kind.String()),
		)
		return Reply{
			Outcome:  OutcomeStale,
			Messages: []Message{{ChatID: ev.chat(), Role: RoleUser, Text: i18n.RestartHint}},
		}, nil
	}

	next, err := Apply(sess, ev)
	switch {
	case errors.Is(err, ErrKindMismatch):
		expects, _ := sess.State.Expects()
		logger.LogEvent(ctx, logger.Conv, slog.LevelDebug, "conv.mismatch",
			slog.String("status", "mismatch"),
			slog.String("state", sess.State.String()),
			slog.String("kind", ev.Kind.String()),
			slog.String("expects", expects.String()),
		)
		msg, perr := e.prompt(sess)
		if perr != nil {
			return Reply{}, perr
		}
		return Reply{Outcome: OutcomeReprompted, State: sess.State, Messages: []Message{msg}}, nil
	case err != nil:
		return Reply{}, err
	}

	switch next.State {
	case StateCancelled:
		return e.cancel(ctx, sess, next)
	case StateCompleted:
		return e.complete(ctx, next)
	}

	e.store.Save(ev.UserID, next)
	logger.LogEvent(ctx, logger.Conv, slog.LevelDebug, "conv.transition",
		slog.String("status", "ok"),
		slog.String("state", sess.State.String()),
		slog.String("next_state", next.State.String()),
		slog.String("lang", string(next.Language)),
	)
	msg, err := e.prompt(next)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Outcome: OutcomeAdvanced, State: next.State, Messages: []Message{msg}}, nil
}

func (e *Engine) start(ctx context.Context, ev Event) (Reply, error) {
	fresh := NewSession(ev.UserID, ev.chat(), e.now())
	created := false
	prev := e.store.GetOrCreate(ev.UserID, func() Session {
		created = true
		return fresh
	})
	outcome := OutcomeStarted
	if !created {
		// restart: previous answers are discarded
		e.store.Save(ev.UserID, fresh)
		outcome = OutcomeRestarted
	}
	logger.LogEvent(ctx, logger.Conv, slog.LevelInfo, "conv.start",
		slog.String("status", "ok"),
		slog.Bool("restart", !created),
		slog.String("state", prev.State.String()),
	)
	msg, err := e.prompt(fresh)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Outcome: outcome, State: fresh.State, Messages: []Message{msg}}, nil
}

func (e *Engine) cancel(ctx context.Context, prev, next Session) (Reply, error) {
	e.store.Delete(next.UserID)
	logger.LogEvent(ctx, logger.Conv, slog.LevelInfo, "conv.cancelled",
		slog.String("status", "cancelled"),
		slog.String("state", prev.State.String()),
		slog.String("lang", string(next.Language)),
	)
	text, err := e.catalog.Resolve(next.replyLanguage(), i18n.TextCancelled)
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Outcome:  OutcomeCancelled,
		State:    StateCancelled,
		Messages: []Message{{ChatID: next.ChatID, Role: RoleUser, Text: text}},
	}, nil
}

func (e *Engine) complete(ctx context.Context, s Session) (Reply, error) {
	// The session is destroyed whatever happens next.
	e.store.Delete(s.UserID)

	summary, err := BuildSummary(e.catalog, s)
	if err != nil {
		logger.LogEvent(ctx, logger.Conv, slog.LevelError, "conv.summary",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return Reply{}, fmt.Errorf("conversation: complete user %d: %w", s.UserID, err)
	}

	sub := Submission{
		ID:            uuid.New(),
		UserID:        s.UserID,
		Language:      s.Language,
		ApartmentType: s.ApartmentType,
		Answers:       s.Answers,
		StartedAt:     s.StartedAt,
		CompletedAt:   e.now(),
	}
	if e.recorder != nil {
		e.recording.Add(1)
		go func() {
			defer e.recording.Done()
			e.record(context.WithoutCancel(ctx), sub)
		}()
	}

	logger.LogEvent(ctx, logger.Conv, slog.LevelInfo, "conv.completed",
		slog.String("status", "ok"),
		slog.String("outcome", "completed"),
		slog.String("submission_id", sub.ID.String()),
		slog.String("lang", string(s.Language)),
		slog.String("apartment_type", string(s.ApartmentType)),
		slog.Duration("duration", sub.CompletedAt.Sub(s.StartedAt)),
	)
	return Reply{
		Outcome: OutcomeCompleted,
		State:   StateCompleted,
		Messages: []Message{
			{ChatID: s.ChatID, Role: RoleUser, Text: summary},
			{ChatID: e.operator, Role: RoleOperator, Text: summary},
		},
	}, nil
}

// Wait blocks until every submission handed to the Recorder has been written or has failed.
func (e *Engine) Wait() {
	e.recording.Wait()
}

func (e *Engine) record(ctx context.Context, sub Submission) {
	rctx, cancel := context.WithTimeout(ctx, e.recordTimeout)
	defer cancel()
	if err := e.recorder.Record(rctx, sub); err != nil {
		logger.LogEvent(ctx, logger.Journal, slog.LevelError, "journal.record",
			slog.String("status", "fail"),
			slog.String("submission_id", sub.ID.String()),
			slog.String("err", err.Error()),
		)
	}
}

// prompt renders the question s is waiting on.
func (e *Engine) prompt(s Session) (Message, error) {
	p, err := PromptFor(s)
	if err != nil {
		return Message{}, err
	}
	msg := Message{ChatID: s.ChatID, Role: RoleUser, Group: p.Group}
	if p.Picker {
		msg.Text = i18n.LanguagePrompt
		msg.Buttons = append([]i18n.Button(nil), i18n.LanguageButtons...)
		return msg, nil
	}
	lang := s.replyLanguage()
	if msg.Text, err = e.catalog.Resolve(lang, p.Key); err != nil {
		return Message{}, err
	}
	if p.Buttons != "" {
		if msg.Buttons, err = e.catalog.Buttons(lang, p.Buttons); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}
