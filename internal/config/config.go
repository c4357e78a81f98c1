// Package config loads the humdrum runtime configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvStoreKey names the environment variable holding the store encryption key.
const EnvStoreKey = "HUMDRUM_STORE_KEY"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the runtime configuration shared by the CLI commands.
type Config struct {
	Site     string `yaml:"site" json:"site"`
	Commands string `yaml:"commands" json:"commands"`
	Addr     string `yaml:"addr" json:"addr"`

	Log     LogConfig     `yaml:"log" json:"log"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	Session SessionConfig `yaml:"session" json:"session"`

	MaxForwardDepth int  `yaml:"max_forward_depth" json:"max_forward_depth"`
	Metrics         bool `yaml:"metrics" json:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StoreConfig selects the session store. Mask lists regular expressions of
// model keys whose values are masked before saving. EncryptionKey is a base64
// AES-256 key; EnvStoreKey is read when it is empty.
type StoreConfig struct {
	Type          string   `yaml:"type" json:"type"`
	Dir           string   `yaml:"dir" json:"dir"`
	Mask          []string `yaml:"mask" json:"mask"`
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

type SessionConfig struct {
	TTL     Duration `yaml:"ttl" json:"ttl"`
	LockTTL Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

// Duration accepts "30s"-style strings in YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Site:     "site.yaml",
		Commands: "commands.yaml",
		Addr:     ":8080",
		Log:  LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Type: StoreMemory,
			Dir:  ".humdrum/sessions",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Session: SessionConfig{
			LockTTL: Duration(10 * time.Second),
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Files ending in .json are decoded as JSON, anything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	if c.MaxForwardDepth < 0 {
		return fmt.Errorf("max_forward_depth must not be negative")
	}
	return nil
}
