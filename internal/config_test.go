package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/csvsql/internal/sql/executor"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "csvsql", cfg.AppName)
	assert.Equal(t, "test_db", cfg.Storage.Workdir)
	assert.Equal(t, "127.0.0.1:8866", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.Engine.StmtCacheSize)
	assert.Equal(t, executor.DefaultLimits(), cfg.Limits())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: demo
storage:
  workdir: /var/lib/csvsql
engine:
  stack_size: 512
  max_columns: 8
server:
  addr: 0.0.0.0:9000
  debug: true
`), 0o644))

	t.Setenv("CSVSQL_ENGINE_MAX_VALUES", "4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.AppName)
	assert.Equal(t, "/var/lib/csvsql", cfg.Storage.Workdir)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.Debug)

	l := cfg.Limits()
	assert.Equal(t, 512, l.StackSize)
	assert.Equal(t, 8, l.MaxColumns)
	assert.Equal(t, 4, l.MaxValues)
	assert.Equal(t, executor.DefaultLimits().MaxRowCells, l.MaxRowCells)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server.addr", "", "listen address")
	require.NoError(t, fs.Parse([]string{"--server.addr=127.0.0.1:1"}))

	cfg, err := LoadConfigWithFlags("", fs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
