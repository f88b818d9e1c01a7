package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles Viper-based configuration loading.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// newViper builds a viper instance seeded with defaults and env overrides.
func (l *Loader) newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("workflows_dir", "workflows")
	v.SetDefault("history_path", ".driftrun/history.yaml")
	v.SetDefault("secrets.env_prefix", "DRIFTRUN_SECRET_")
	v.SetDefault("secrets.file", "")
	v.SetDefault("output.truncate_length", 0)
	v.SetDefault("notify.url", "")
	v.SetDefault("notify.timeout_seconds", 10)
	v.SetDefault("notify.max_retries", 2)
	v.SetDefault("artifacts.endpoint", "")
	v.SetDefault("artifacts.access_key", "")
	v.SetDefault("artifacts.secret_key", "")
	v.SetDefault("artifacts.bucket", "driftrun-runs")
	v.SetDefault("artifacts.region", "")
	v.SetDefault("artifacts.use_ssl", true)
	v.SetDefault("serve.addr", ":8080")

	v.SetEnvPrefix("DRIFTRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load discovers and loads the configuration.
//
// Discovery order: DRIFTRUN_CONFIG_PATH, the user config directory, then
// ./driftrun.yaml. A missing config file is fine; defaults and environment
// overrides still apply.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv("DRIFTRUN_CONFIG_PATH"); path != "" {
		return l.LoadFromFile(path)
	}

	for _, path := range l.searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return l.LoadFromFile(path)
		}
	}

	var cfg Config
	if err := l.newViper().Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from an explicit file, layered over
// defaults and under environment overrides.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	v := l.newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (l *Loader) searchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "driftrun", "config.yaml"))
	}
	paths = append(paths, "driftrun.yaml")
	return paths
}
