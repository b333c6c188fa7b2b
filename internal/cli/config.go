package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/errors"
)

// Cache backends accepted in the config file.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the optional config file.
//
//	registries:
//	  npm: https://registry.npmjs.org
//	  cargo: https://crates.io/api/v1
//	cache:
//	  backend: file # file, redis or none
//	  ttl: 1h
//	  redis_addr: localhost:6379
//	concurrency: 16
//	timeout: 15s
type Config struct {
	Registries  Registries    `yaml:"registries"`
	Cache       CacheConfig   `yaml:"cache"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Registries holds the registry base URL per project kind. Empty means
// the public registry.
type Registries struct {
	Npm   string `yaml:"npm"`
	Cargo string `yaml:"cargo"`
}

// For returns the registry configured for kind.
func (r Registries) For(kind deps.Kind) string {
	switch kind {
	case deps.KindNpm:
		return r.Npm
	case deps.KindCargo:
		return r.Cargo
	}
	return ""
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// parseConfig decodes and validates a config file. Unknown keys are
// rejected so that typos do not go unnoticed.
func parseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (available: file, redis, none)", cfg.Cache.Backend)
	}
	if cfg.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must not be negative")
	}
	if cfg.Timeout < 0 || cfg.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	for _, u := range []string{cfg.Registries.Npm, cfg.Registries.Cargo} {
		if u == "" {
			continue
		}
		if err := errors.ValidateURL(u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry")
		}
	}
	return nil
}

// loadConfig reads --config, or the default config file when it exists.
func (c *CLI) loadConfig() (*Config, error) {
	path, explicit := c.flags.config, c.flags.config != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return parseConfig(bytes.NewReader(data))
}

// configPath returns the default config file using the XDG standard
// (~/.config/depman/config.yaml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.yaml"), nil
}
