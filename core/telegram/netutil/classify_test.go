package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), "timeout"},
		{"cancelled", context.Canceled, "cancelled"},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, "dns"},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, "dial"},
		{"blocked", &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}, "blocked"},
		{"bad request", &tele.Error{Code: 400, Description: "Bad Request: chat not found"}, "http_4xx"},
		{"flood", tele.FloodError{RetryAfter: 3}, "flood"},
		{"parsed code", errors.New("telegram: internal (502)"), "http_5xx"},
		{"opaque", errors.New("boom"), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAH-abc_def/sendMessage": dial tcp: timeout`)
	got := Redact(err)
	assert.NotContains(t, got, "AAH-abc_def")
	assert.Contains(t, got, "bot<redacted>/sendMessage")
	assert.Empty(t, Redact(nil))
}
