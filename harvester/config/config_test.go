package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

func TestDefaultHarvester(t *testing.T) {
	cfg := DefaultHarvester()
	require.Equal(t, 10000, cfg.Catch.BatchSize)
	require.Equal(t, 4, cfg.Archive.Retries)
	require.Equal(t, "harvest-log.csv", cfg.Harvest.LogFileName)
}

func TestFromReader(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(`
[Catch]
Database = "postgres://db.example.com/catch"
BatchSize = 500

[Archive]
Retries = 2
`), DefaultHarvester())
	require.NoError(t, err)

	require.Equal(t, "postgres://db.example.com/catch", cfg.Catch.Database)
	require.Equal(t, 500, cfg.Catch.BatchSize)
	require.Equal(t, 2, cfg.Archive.Retries)
	// untouched values keep their defaults
	require.Equal(t, "postgres://localhost/sbnsis", cfg.SBNSIS.Database)
	require.Equal(t, "/n", cfg.ATLAS.DataRoot)
}

func TestFromReaderBadTOML(t *testing.T) {
	_, err := FromReader(strings.NewReader("Catch = ["), DefaultHarvester())
	require.ErrorIs(t, err, types.ErrDecodeConfigFailed)
}

func TestFromReaderEnvOverride(t *testing.T) {
	t.Setenv("CS_HARVESTER_CATCH_DATABASE", "postgres://env.example.com/catch")

	cfg, err := FromReader(strings.NewReader(""), DefaultHarvester())
	require.NoError(t, err)
	require.Equal(t, "postgres://env.example.com/catch", cfg.Catch.Database)
}

func TestConfigComment(t *testing.T) {
	b, err := ConfigComment(DefaultHarvester())
	require.NoError(t, err)

	for _, line := range strings.Split(string(b), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '[' {
			continue
		}
		require.True(t, strings.HasPrefix(trimmed, "#"), "line %q not commented", line)
	}

	// commented defaults still parse as empty TOML
	cfg, err := FromReader(strings.NewReader(string(b)), DefaultHarvester())
	require.NoError(t, err)
	require.Equal(t, DefaultHarvester(), cfg)
}
