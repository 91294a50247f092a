package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	var off Config
	require.NoError(t, off.Normalize())
	assert.Empty(t, off.Port)

	c := Config{Enabled: true, Host: "db", User: "bot", Name: "estate"}
	require.NoError(t, c.Normalize())
	assert.Equal(t, "5432", c.Port)
	assert.Equal(t, "disable", c.SSLMode)
	assert.Equal(t, 4, c.MaxConnections)
	assert.Equal(t, 30, c.ReadyTimeoutSeconds)

	bad := Config{Enabled: true, Host: "db"}
	assert.Error(t, bad.Normalize())
}

func TestConfigDSNAndURL(t *testing.T) {
	c := Config{Host: "db", Port: "5433", User: "bot", Password: "p@ss word", Name: "estate", SSLMode: "require"}
	assert.Equal(t, "user=bot password=p@ss word host=db port=5433 dbname=estate sslmode=require", c.DSN())
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5433/estate?sslmode=require", c.URL())
}

func TestMigrationFileSelection(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_add_index.up.sql":  {Data: []byte("--")},
		"migrations/000001_init.up.sql":       {Data: []byte("--")},
		"migrations/000001_init.down.sql":     {Data: []byte("--")},
		"migrations/000003_later.up.sql":      {Data: []byte("--")},
		"migrations/notes/000009_skip.up.sql": {Data: []byte("--")},
	}
	files := listMigrationFiles(fsys, "migrations")
	assert.Equal(t, []string{"000001_init.up.sql", "000002_add_index.up.sql", "000003_later.up.sql"}, files)

	assert.Equal(t, uint64(2), parseVersion("000002_add_index.up.sql"))
	assert.Equal(t, uint64(0), parseVersion("garbage"))
	assert.Equal(t, []string{"000002_add_index.up.sql", "000003_later.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
	assert.Nil(t, listMigrationFiles(fsys, "missing"))
}
