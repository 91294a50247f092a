package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/estatebot/core/telegram/helpers"
)

// fakeContext implements the subset of tele.Context the middlewares touch.
type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]interface{}
}

func newFakeContext(userID int64, upd tele.Update) *fakeContext {
	if upd.Message == nil && upd.Callback == nil {
		upd.Message = &tele.Message{Text: "hi"}
	}
	if upd.Message != nil {
		upd.Message.Sender = &tele.User{ID: userID}
		upd.Message.Chat = &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	}
	if upd.Callback != nil {
		upd.Callback.Sender = &tele.User{ID: userID}
	}
	return &fakeContext{update: upd, store: map[string]interface{}{}}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.update.Callback != nil:
		return f.update.Callback.Sender
	case f.update.Message != nil:
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Message != nil {
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }

func (f *fakeContext) Text() string {
	if f.update.Message != nil {
		return f.update.Message.Text
	}
	return ""
}

func (f *fakeContext) Set(key string, v interface{}) { f.store[key] = v }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func countingHandler(n *int) tele.HandlerFunc {
	return func(tele.Context) error {
		*n++
		return nil
	}
}

func TestRateLimitDropsFastRepeats(t *testing.T) {
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: countingHandler(&limited),
		Now:       func() time.Time { return now },
	})
	calls := 0
	h := mw(countingHandler(&calls))

	require.NoError(t, h(newFakeContext(1, tele.Update{ID: 1})))
	require.NoError(t, h(newFakeContext(1, tele.Update{ID: 2})))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, limited)

	// other users are unaffected
	require.NoError(t, h(newFakeContext(2, tele.Update{ID: 3})))
	assert.Equal(t, 2, calls)

	// excluded kinds pass
	require.NoError(t, h(newFakeContext(1, tele.Update{ID: 4, Callback: &tele.Callback{Data: "\flang|az"}})))
	assert.Equal(t, 3, calls)

	now = now.Add(2 * time.Second)
	require.NoError(t, h(newFakeContext(1, tele.Update{ID: 5})))
	assert.Equal(t, 4, calls)
}

func TestAdminOnly(t *testing.T) {
	rejected, calls := 0, 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 42, OnReject: countingHandler(&rejected)})
	h := mw(countingHandler(&calls))

	require.NoError(t, h(newFakeContext(7, tele.Update{ID: 1})))
	require.NoError(t, h(newFakeContext(42, tele.Update{ID: 2})))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejected)

	closed := AdminOnlyMiddleware(AdminOptions{})(countingHandler(&calls))
	require.NoError(t, closed(newFakeContext(42, tele.Update{ID: 3})))
	assert.Equal(t, 1, calls)
}

func TestRecoverReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newFakeContext(1, tele.Update{ID: 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(newFakeContext(1, tele.Update{ID: 2})), want)
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	c := newFakeContext(5, tele.Update{ID: 77})
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		_, ok := tghelpers.ContextFrom(c)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, h(c))
	assert.NotEmpty(t, rid)
}

func TestMetricsCounters(t *testing.T) {
	c := newFakeContext(5, tele.Update{ID: 1})
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		CountQueued(c, false)
		CountQueued(c, true)
		return nil
	})
	require.NoError(t, h(c))
	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "message", UpdateKind(tele.Update{Message: &tele.Message{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}
