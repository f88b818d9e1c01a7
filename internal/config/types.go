// Package config provides configuration loading and management for driftrun.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The defaults work out of the box: workflows
// in ./workflows, secrets from DRIFTRUN_SECRET_* environment variables, no
// webhook, no artifact store.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DRIFTRUN_ prefix, nested keys joined with _)
//  2. Config file specified by DRIFTRUN_CONFIG_PATH
//  3. User config directory (~/.config/driftrun/config.yaml on Linux)
//  4. ./driftrun.yaml
//  5. [DefaultConfig] defaults
package config

// Config is the root configuration container.
type Config struct {
	// WorkflowsDir is the directory scanned for workflow YAML files.
	WorkflowsDir string `mapstructure:"workflows_dir"`

	// HistoryPath is where per-workflow run outcomes are recorded.
	HistoryPath string `mapstructure:"history_path"`

	// Secrets configures where secret bindings are resolved from.
	Secrets SecretsConfig `mapstructure:"secrets"`

	// Output configures terminal output formatting.
	Output OutputConfig `mapstructure:"output"`

	// Notify configures the optional run-completion webhook.
	Notify NotifyConfig `mapstructure:"notify"`

	// Artifacts configures the optional S3-compatible artifact store.
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`

	// Serve configures the HTTP dispatch server.
	Serve ServeConfig `mapstructure:"serve"`
}

// SecretsConfig controls secret resolution.
type SecretsConfig struct {
	// EnvPrefix is prepended to secret names when reading them from the
	// process environment. Default: "DRIFTRUN_SECRET_".
	EnvPrefix string `mapstructure:"env_prefix"`

	// File is an optional YAML file of name: value secret pairs, consulted
	// after the environment.
	File string `mapstructure:"file"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// TruncateLength caps printed step output lines. Zero disables
	// truncation.
	TruncateLength int `mapstructure:"truncate_length"`
}

// NotifyConfig controls the run-completion webhook. Disabled when URL is
// empty.
type NotifyConfig struct {
	// URL receives a POSTed JSON run summary after every run.
	URL string `mapstructure:"url"`

	// TimeoutSeconds bounds each delivery attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// MaxRetries is how many times a failed delivery is retried.
	MaxRetries int `mapstructure:"max_retries"`
}

// ArtifactsConfig controls run artifact upload. Disabled when Endpoint is
// empty.
type ArtifactsConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ServeConfig controls the HTTP dispatch server.
type ServeConfig struct {
	// Addr is the listen address for `driftrun serve`.
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkflowsDir: "workflows",
		HistoryPath:  ".driftrun/history.yaml",
		Secrets: SecretsConfig{
			EnvPrefix: "DRIFTRUN_SECRET_",
		},
		Output: OutputConfig{
			TruncateLength: 0,
		},
		Notify: NotifyConfig{
			TimeoutSeconds: 10,
			MaxRetries:     2,
		},
		Artifacts: ArtifactsConfig{
			Bucket: "driftrun-runs",
			UseSSL: true,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}
