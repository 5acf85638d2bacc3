package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "COHORTMAP"

// Sentinel errors returned by Load.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigParseError   = errors.New("config file could not be parsed")
	ErrConfigInvalid      = errors.New("config is invalid")
)

// newViper builds a Viper instance with YAML file type, the COHORTMAP_ env
// prefix, automatic env binding and a key replacer mapping "." to "_", so
// that "session.backend" resolves to COHORTMAP_SESSION_BACKEND.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges COHORTMAP_* environment
// overrides and validates the result.  An empty configPath loads from the
// environment alone.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParseError, configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from defaults and COHORTMAP_* environment
// variables, with no config file.
//
//	COHORTMAP_<SECTION>_<FIELD>   e.g.  COHORTMAP_SERVER_PORT, COHORTMAP_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}
	// Viper does not split env strings into slices for nested keys.
	if raw := os.Getenv(envPrefix + "_CORS_ALLOWED_ORIGINS"); raw != "" {
		cfg.CORS.AllowedOrigins = splitList(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file changes on disk.  Only settings that are safe to change at
// runtime, such as the log level, should be applied by the callback.  Changes
// that fail to parse or validate are reported to onError and otherwise
// ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is Load that panics on error, for use in main.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
