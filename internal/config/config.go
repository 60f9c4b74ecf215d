// Package config loads operator settings from an optional YAML file, the
// environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rcliao/coldsteel/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. COLDSTEEL_DB.
const EnvPrefix = "COLDSTEEL"

// Config is the resolved operator configuration.
type Config struct {
	DBPath          string
	Online          bool
	Priority        model.PriorityLevel
	ActiveProvider  string
	LogLevel        string
	LogDev          bool
	ProviderTimeout time.Duration

	// Home holds the default database and config file.
	Home string

	// File is the config file that was read, empty when none was found.
	File string

	// APIKey is used when a provider config carries no key of its own.
	APIKey string
}

// Home returns $COLDSTEEL_HOME, or ~/.coldsteel.
func Home() string {
	if h := os.Getenv(EnvPrefix + "_HOME"); h != "" {
		return h
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coldsteel")
}

// Load reads configuration. When file is empty, config.yaml under Home is
// used if it exists; an explicitly named file must exist.
func Load(file string) (*Config, error) {
	home := Home()

	v := viper.New()
	v.SetDefault("db", filepath.Join(home, "coldsteel.db"))
	v.SetDefault("online", true)
	v.SetDefault("priority", string(model.PriorityNormal))
	v.SetDefault("active_provider", model.DefaultProviderID)
	v.SetDefault("api_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("provider.timeout", "0s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	priority, err := model.ParsePriority(v.GetString("priority"))
	if err != nil {
		return nil, fmt.Errorf("config priority: %w", err)
	}
	timeout := v.GetDuration("provider.timeout")
	if timeout < 0 {
		return nil, fmt.Errorf("config provider.timeout: must not be negative, got %s", timeout)
	}

	return &Config{
		Home:            home,
		File:            v.ConfigFileUsed(),
		DBPath:          v.GetString("db"),
		Online:          v.GetBool("online"),
		Priority:        priority,
		ActiveProvider:  v.GetString("active_provider"),
		APIKey:          v.GetString("api_key"),
		LogLevel:        v.GetString("log.level"),
		LogDev:          v.GetBool("log.dev"),
		ProviderTimeout: timeout,
	}, nil
}

// Persist writes key=value into the config file, creating it under Home when
// none exists. Other keys already in the file are kept.
func Persist(file, key string, value any) (string, error) {
	if file == "" {
		file = filepath.Join(Home(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(file)
	if _, err := os.Stat(file); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config: %w", err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(file); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return file, nil
}
