package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Link resolver proxy endpoints
	Resolver ResolverConfig `koanf:"resolver"`

	// Player settings
	Player PlayerConfig `koanf:"player"`

	// Logging settings
	Log LogConfig `koanf:"log"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// ResolverConfig holds proxy endpoints for hosts that need a
// server-side lookup or stream relay.
type ResolverConfig struct {
	KrakenfilesProxy string `koanf:"krakenfiles_proxy"`
	OnlyfilesProxy   string `koanf:"onlyfiles_proxy"`
	SoundcloudProxy  string `koanf:"soundcloud_proxy"` // template with {user} and {track}
}

// PlayerConfig holds audio output configuration.
type PlayerConfig struct {
	Volume  float64 `koanf:"volume"`   // initial volume 0.0-1.0 (default: 1.0)
	CacheMB int     `koanf:"cache_mb"` // demuxer cache size in MiB (default: 32)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // logrus level name (default: "info")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Player: PlayerConfig{
			Volume:  1.0,
			CacheMB: 32,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize proxy URLs (remove trailing slash)
	cfg.Resolver.KrakenfilesProxy = strings.TrimSuffix(cfg.Resolver.KrakenfilesProxy, "/")
	cfg.Resolver.OnlyfilesProxy = strings.TrimSuffix(cfg.Resolver.OnlyfilesProxy, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/artistgrid/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "artistgrid", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetPlayerConfig returns the player configuration with invalid
// values replaced by defaults.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	if cfg.Volume < 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}
	if cfg.CacheMB <= 0 {
		cfg.CacheMB = 32
	}

	return cfg
}
