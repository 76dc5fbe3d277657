package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cs-harvester")
	r, err := NewRepo(path)
	require.NoError(t, err)

	exists, err := r.Exists()
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, r.Init())

	exists, err = r.Exists()
	require.NoError(t, err)
	require.True(t, exists)

	for _, dir := range []string{r.LoggingDir(), r.DatabasesDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	// the default config is fully commented out
	cfg, err := r.Config()
	require.NoError(t, err)
	require.Equal(t, 10000, cfg.Catch.BatchSize)

	// reinitializing is a no-op
	require.NoError(t, r.Init())
}

func TestConfigOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cs-harvester")
	r, err := NewRepo(path)
	require.NoError(t, err)
	require.NoError(t, r.Init())

	require.NoError(t, os.WriteFile(r.ConfigPath(), []byte(`
[Catch]
BatchSize = 100
`), 0644))

	cfg, err := r.Config()
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Catch.BatchSize)
	require.Equal(t, "postgres://localhost/catch", cfg.Catch.Database)
}

func TestPaths(t *testing.T) {
	path := t.TempDir()
	r, err := NewRepo(path)
	require.NoError(t, err)

	cfg, err := r.Config()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(path, "harvest-log.csv"), r.HarvestLogPath(cfg))
	require.Equal(t, filepath.Join(path, "css-file-list.txt.gz"), r.FileListPath())
}
