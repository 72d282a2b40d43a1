package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultRemoteURL       = "https://api.focusdo.app/v1"
	defaultSyncIntervalSec = 30
)

// Config holds everything the composition root needs. UserID may be empty:
// anonymous usage is a supported path, sessions are simply created without
// an owner.
type Config struct {
	DataDir         string `yaml:"data_dir"`
	RemoteURL       string `yaml:"remote_url"`
	APIKey          string `yaml:"api_key"`
	UserID          string `yaml:"user_id"`
	ProbeURL        string `yaml:"probe_url"`
	SyncIntervalSec int    `yaml:"sync_interval_sec"`
	PluginDir       string `yaml:"plugin_dir"`
}

func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "focusdo.db")
}

func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSec) * time.Second
}

// Load reads the YAML config at path, or returns defaults rooted at dataDir
// when the file does not exist.
func Load(path, dataDir string) (Config, error) {
	cfg := defaults(dataDir)
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = defaultRemoteURL
	}
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = cfg.RemoteURL + "/health"
	}
	if cfg.SyncIntervalSec <= 0 {
		cfg.SyncIntervalSec = defaultSyncIntervalSec
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}
	return cfg, nil
}

func defaults(dataDir string) Config {
	return Config{
		DataDir:         dataDir,
		RemoteURL:       defaultRemoteURL,
		ProbeURL:        defaultRemoteURL + "/health",
		SyncIntervalSec: defaultSyncIntervalSec,
		PluginDir:       filepath.Join(dataDir, "plugins"),
	}
}
