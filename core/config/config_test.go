package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: from-file
  run_mode: polling
rate_limit:
  interval_ms: 500
  exclude_updates: [" Callback "]
`)
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, []string{UpdateCallback}, cfg.RateLimit.ExcludeUpdates)
	assert.Equal(t, 500, cfg.RateLimit.IntervalMS)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing token",
			cfg:     Config{},
			wantErr: "telegram token is required",
		},
		{
			name: "webhook without url",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "webhook"},
			},
			wantErr: "webhook.url is required",
		},
		{
			name: "unknown run mode",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "push"},
			},
			wantErr: "invalid telegram.run_mode",
		},
		{
			name: "unknown exclusion",
			cfg: Config{
				Telegram:  TelegramConfig{Token: "t"},
				RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline_query"}},
			},
			wantErr: "invalid rate_limit.exclude_updates",
		},
		{
			name: "negative sender workers",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t"},
				Sender:   SenderConfig{Workers: -1},
			},
			wantErr: "sender settings",
		},
		{
			name: "valid webhook",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "WEBHOOK"},
				Webhook:  WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0", Port: 8443},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Normalize(&cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
		})
	}
}
