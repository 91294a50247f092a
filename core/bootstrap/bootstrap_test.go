package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/estatebot/core/config"
	coredatabase "github.com/m3rciful/estatebot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipsDisabledDatabase(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not run")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.NoError(t, res.Close())
}

func TestRunMigratesBeforeConnect(t *testing.T) {
	var steps []string
	_, err := Run(context.Background(), Options{
		Config:        &coreconfig.Config{},
		Database:      coredatabase.Config{Enabled: true},
		Migrations:    fstest.MapFS{"migrations/000001_init.up.sql": {Data: []byte("--")}},
		MigrationsDir: "migrations",
		LoggerInit:    noLogger,
		Migrate: func(_ context.Context, _ coredatabase.Config, _ fs.FS, dir string) error {
			steps = append(steps, "migrate:"+dir)
			return nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return nil, errors.New("refused")
		},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"migrate:migrations", "connect"}, steps)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("bad log dir") },
	})
	assert.ErrorContains(t, err, "logger init")
}
