package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Provider identifiers for the synthesis backend.
const (
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration
type Config struct {
	Version   int             `toml:"version"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Narration NarrationConfig `toml:"narration"`
	Clips     ClipConfig      `toml:"clips"`
	Autopilot AutopilotConfig `toml:"autopilot"`
	Feed      FeedConfig      `toml:"feed"`
	Server    ServerConfig    `toml:"server"`
}

type CatalogConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	ImageBaseURL string `toml:"image_base_url"`
}

type SynthesisConfig struct {
	Provider  string `toml:"provider"`
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

type NarrationConfig struct {
	Endpoint   string `toml:"endpoint"`
	APIKey     string `toml:"api_key"`
	Voice      string `toml:"voice"`
	SampleRate int    `toml:"sample_rate"`
}

type ClipConfig struct {
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
	Resolution     string `toml:"resolution"`
	AspectRatio    string `toml:"aspect_ratio"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
}

type AutopilotConfig struct {
	IntervalSeconds   int `toml:"interval_seconds"`
	PublishDelayMilli int `toml:"publish_delay_ms"`
}

type FeedConfig struct {
	PrependCap       int `toml:"prepend_cap"`
	SearchDebounceMS int `toml:"search_debounce_ms"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	OpenBrowser bool   `toml:"open_browser"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Catalog: CatalogConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
		},
		Synthesis: SynthesisConfig{
			Provider:  ProviderAnthropic,
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Narration: NarrationConfig{
			Voice:      "Kore",
			SampleRate: 24000,
		},
		Clips: ClipConfig{
			Resolution:     "720p",
			AspectRatio:    "16:9",
			PollIntervalMS: 10000,
		},
		Autopilot: AutopilotConfig{
			IntervalSeconds:   180,
			PublishDelayMilli: 3000,
		},
		Feed: FeedConfig{
			PrependCap:       4,
			SearchDebounceMS: 600,
		},
		Server: ServerConfig{
			Addr:        "localhost:8480",
			OpenBrowser: false,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "reelpress"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "reelpress"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath returns the full path to the sqlite database
func DatabasePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reelpress.db"), nil
}

// Load reads config from disk. API keys may also come from the
// environment, which takes precedence over the file.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Synthesis.APIKey = v
	}
	if v := os.Getenv("REELPRESS_CATALOG_API_KEY"); v != "" {
		c.Catalog.APIKey = v
	}
	if v := os.Getenv("REELPRESS_NARRATION_API_KEY"); v != "" {
		c.Narration.APIKey = v
	}
	if v := os.Getenv("REELPRESS_CLIP_API_KEY"); v != "" {
		c.Clips.APIKey = v
	}
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
