package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3, QueueSize: 32})

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	for i := 0; i < 10; i++ {
		for _, chat := range []int64{7, 8, -100500} {
			chat, i := chat, i
			require.NoError(t, d.Enqueue(context.Background(), Job{
				Action: "send.text",
				ChatID: chat,
				Run: func(context.Context) error {
					mu.Lock()
					got[chat] = append(got[chat], i)
					mu.Unlock()
					return nil
				},
			}))
		}
	}
	d.Close()

	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	for _, chat := range []int64{7, 8, -100500} {
		assert.Equal(t, want, got[chat], "chat %d", chat)
	}
	assert.Equal(t, uint64(30), d.Sent())
	assert.Zero(t, d.Failed())
}

func TestDispatcherRunsOnceAndReportsFailure(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})

	var calls, reported atomic.Int32
	boom := errors.New("Forbidden: bot was blocked by the user (403)")
	require.NoError(t, d.Enqueue(context.Background(), Job{
		Action:    "send.summary",
		ChatID:    42,
		Recipient: "operator",
		Run: func(context.Context) error {
			calls.Add(1)
			return boom
		},
		OnError: func(_ context.Context, err error) {
			assert.ErrorIs(t, err, boom)
			reported.Add(1)
		},
	}))
	d.Close()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), reported.Load())
	assert.Equal(t, uint64(1), d.Failed())
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, Timeout: 20 * time.Millisecond})

	var deadline atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Enqueue(ctx, Job{
		Action: "send.text",
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			deadline.Store(ok)
			<-ctx.Done()
			return ctx.Err()
		},
	}))
	// cancelling the producer context must not abort the job
	cancel()
	d.Close()

	assert.True(t, deadline.Load())
	assert.Equal(t, uint64(1), d.Failed())
}

func TestDispatcherQueueLimits(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	started := make(chan struct{})
	block := Job{Action: "block", Run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}
	noop := Job{Action: "noop", Run: func(context.Context) error { return nil }}

	require.NoError(t, d.Enqueue(context.Background(), block))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), noop))
	assert.ErrorIs(t, d.Enqueue(context.Background(), noop), ErrQueueFull)

	close(release)
	d.Close()
	assert.ErrorIs(t, d.Enqueue(context.Background(), noop), ErrQueueClosed)
	assert.Error(t, d.Enqueue(context.Background(), Job{Action: "nil"}))
}
