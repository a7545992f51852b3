package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "events.db", cfg.Database)
	assert.Equal(t, "events", cfg.Table)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestLoad-*")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	path := filepath.Join(dir, "searchpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\ndatabase: /tmp/evt.db\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "/tmp/evt.db", cfg.Database)
	assert.Equal(t, "events", cfg.Table, "unset keys keep defaults")
}

func TestLoad_BadFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestLoadBad-*")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	path := filepath.Join(dir, "searchpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\nnot yaml {{{"), 0600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	path = filepath.Join(dir, "empty-table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: \" \"\n"), 0600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
