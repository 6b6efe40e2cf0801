package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, 1, cfg.Version)
	require.Equal(t, ProviderAnthropic, cfg.Synthesis.Provider)
	require.Equal(t, 180, cfg.Autopilot.IntervalSeconds)
	require.Equal(t, 4, cfg.Feed.PrependCap)
	require.Equal(t, 600, cfg.Feed.SearchDebounceMS)
	require.Equal(t, 24000, cfg.Narration.SampleRate)
	require.Equal(t, "720p", cfg.Clips.Resolution)
	require.Equal(t, "16:9", cfg.Clips.AspectRatio)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Catalog.APIKey = "catalog-key"
	cfg.Server.Addr = "localhost:9999"
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "catalog-key", loaded.Catalog.APIKey)
	require.Equal(t, "localhost:9999", loaded.Server.Addr)
	require.Equal(t, cfg.Feed, loaded.Feed)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Synthesis.APIKey = "file-key"
	require.NoError(t, cfg.Save())

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("REELPRESS_CATALOG_API_KEY", "env-catalog-key")

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", loaded.Synthesis.APIKey)
	require.Equal(t, "env-catalog-key", loaded.Catalog.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Load()
	require.Error(t, err)
}
