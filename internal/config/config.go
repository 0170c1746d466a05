// Package config loads e3spec's own settings: default build locations,
// the GitLab endpoint and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "e3spec"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "e3spec"
	// EnvPrefix prefixes environment overrides, e.g. E3SPEC_GITLAB_TOKEN.
	EnvPrefix = "E3SPEC"
)

// Config holds the settings.
type Config struct {
	Build  BuildConfig  `mapstructure:"build"`
	GitLab GitLabConfig `mapstructure:"gitlab"`
	Log    LogConfig    `mapstructure:"log"`
}

// BuildConfig holds defaults for the build command.
type BuildConfig struct {
	Dirs        []string `mapstructure:"dirs"`
	CloneDir    string   `mapstructure:"clone_dir"`
	Clone       bool     `mapstructure:"clone"`
	CreateLocal bool     `mapstructure:"create_local"`
}

// GitLabConfig identifies the GitLab instance hosting module repositories.
type GitLabConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Dirs:        []string{"build"},
			CloneDir:    "modules",
			Clone:       true,
			CreateLocal: true,
		},
		GitLab: GitLabConfig{
			URL: "https://gitlab.esss.lu.se",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads settings. When path is set only that file is read and it must
// exist; otherwise e3spec.yaml is looked up in the user config directory and
// the working directory, and a missing file means defaults. Environment
// variables with the E3SPEC_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("build.dirs", defaults.Build.Dirs)
	v.SetDefault("build.clone_dir", defaults.Build.CloneDir)
	v.SetDefault("build.clone", defaults.Build.Clone)
	v.SetDefault("build.create_local", defaults.Build.CreateLocal)
	v.SetDefault("gitlab.url", defaults.GitLab.URL)
	v.SetDefault("gitlab.token", defaults.GitLab.Token)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
