package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallWithinStopsAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := callWithin(ctx, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCallWithinReturnsCallError(t *testing.T) {
	boom := errors.New("Bad Request: chat not found")
	err := callWithin(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, callWithin(context.Background(), func() error { return nil }))
}

func TestCallWithinSkipsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := callWithin(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
