// Package config loads the briefing configuration from a YAML or JSON file
// and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error.
const DefaultPath = "briefing.yaml"

// Environment variables that override file values.
const (
	EnvLogLevel  = "BRIEFING_LOG_LEVEL"
	EnvRedisAddr = "BRIEFING_REDIS_ADDR"
	EnvGeminiKey = "GEMINI_API_KEY"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Generator backends.
const (
	GeneratorTemplate = "template"
	GeneratorGenAI    = "genai"
)

// Config is the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" json:"log"`
	Defaults  Defaults        `yaml:"defaults" json:"defaults"`
	Tasks     TaskConfig      `yaml:"tasks" json:"tasks"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Generator GeneratorConfig `yaml:"generator" json:"generator"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Defaults are applied when a request leaves a field empty.
type Defaults struct {
	Location string `yaml:"location" json:"location"`
	Topic    string `yaml:"topic" json:"topic"`
	Count    int    `yaml:"count" json:"count"`
}

type TaskConfig struct {
	Timeout Duration `yaml:"timeout" json:"timeout"`
	// Strict reports source errors as task failures instead of falling back.
	Strict   bool `yaml:"strict" json:"strict"`
	MaxTicks int  `yaml:"max_ticks" json:"max_ticks"`
}

type CacheConfig struct {
	Backend string   `yaml:"backend" json:"backend"`
	Address string   `yaml:"address" json:"address"`
	TTL     Duration `yaml:"ttl" json:"ttl"`
	Size    int      `yaml:"size" json:"size"`
}

type GeneratorConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"api_key" json:"api_key"`
}

type HTTPConfig struct {
	Address string `yaml:"address" json:"address"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("duration must be a string: %s", b)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Defaults: Defaults{
			Location: domain.DefaultLocation,
			Topic:    domain.DefaultTopic,
			Count:    domain.DefaultNewsCount,
		},
		Tasks:     TaskConfig{Timeout: Duration(10 * time.Second), MaxTicks: 1},
		Cache:     CacheConfig{Backend: CacheNone, TTL: Duration(10 * time.Minute), Size: 256},
		Generator: GeneratorConfig{Backend: GeneratorTemplate},
		HTTP:      HTTPConfig{Address: ":8080"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		cfg.Cache.Address = v
		if cfg.Cache.Backend == CacheNone {
			cfg.Cache.Backend = CacheRedis
		}
	}
	if v, ok := lookup(EnvGeminiKey); ok && v != "" {
		cfg.Generator.APIKey = v
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Address == "" {
			return fmt.Errorf("cache backend redis requires an address (or %s)", EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Generator.Backend {
	case GeneratorTemplate:
	case GeneratorGenAI:
		if c.Generator.APIKey == "" {
			return fmt.Errorf("generator genai requires an api key (or %s)", EnvGeminiKey)
		}
	default:
		return fmt.Errorf("unknown generator backend %q", c.Generator.Backend)
	}
	if c.Defaults.Count < 0 {
		return fmt.Errorf("defaults.count must not be negative")
	}
	if c.Tasks.Timeout < 0 {
		return fmt.Errorf("tasks.timeout must not be negative")
	}
	return nil
}
