// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/provider"
)

// Config represents the application configuration.
type Config struct {
	Defaults DefaultsConfig    `yaml:"defaults"`
	Sources  map[string]string `yaml:"sources"` // participant name -> source name
	Script   ScriptConfig      `yaml:"script,omitempty"`
	Server   ServerConfig      `yaml:"server,omitempty"`
	Storage  StorageConfig     `yaml:"storage,omitempty"`
}

// DefaultsConfig holds default settings.
type DefaultsConfig struct {
	MaxRounds int `yaml:"max_rounds"`
}

// ScriptConfig points at a YAML file of pre-written debate lines.
type ScriptConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig holds archive settings.
type StorageConfig struct {
	Path string `yaml:"path"` // empty means the default path
}

// Default returns the default configuration.
func Default() *Config {
	sources := make(map[string]string, core.ParticipantCount)
	for _, p := range core.Participants() {
		sources[p.String()] = provider.MockSourceName
	}

	return &Config{
		Defaults: DefaultsConfig{
			MaxRounds: 10,
		},
		Sources: sources,
		Server: ServerConfig{
			Port: 8182,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file, proceed with defaults
	} else {
		// Sources are re-defaulted below; decoding merges into an existing map.
		cfg.Sources = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	sources, err := normalizeSources(cfg.Sources)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	// Apply .env overrides if file exists
	if env, err := LoadEnv(".env"); err == nil {
		ApplyEnvOverrides(cfg, env)
	}
	ApplyEnvOverrides(cfg, ProcessEnv())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	if c.Defaults.MaxRounds <= 0 {
		return fmt.Errorf("invalid max_rounds: %d", c.Defaults.MaxRounds)
	}
	for name := range c.Sources {
		if _, err := core.ParseParticipant(name); err != nil {
			return fmt.Errorf("invalid sources entry: %w", err)
		}
	}
	return nil
}

// normalizeSources keys the source map by canonical participant name and
// fills in participants missing from it with the default source.
func normalizeSources(in map[string]string) (map[string]string, error) {
	out := Default().Sources
	for name, source := range in {
		p, err := core.ParseParticipant(name)
		if err != nil {
			return nil, fmt.Errorf("invalid sources entry: %w", err)
		}
		out[p.String()] = source
	}
	return out, nil
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// CreateRegistry creates a content source registry from this configuration.
func (c *Config) CreateRegistry() (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if c.Script.Path != "" {
		script, err := provider.LoadScriptSource(provider.ScriptSourceName, c.Script.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load script source: %w", err)
		}
		registry.Register(script)
	}

	for name, source := range c.Sources {
		p, err := core.ParseParticipant(name)
		if err != nil {
			return nil, err
		}
		if err := registry.Bind(p, source); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", p, err)
		}
	}

	return registry, nil
}

// DBPath returns the configured archive path or the default one.
func (c *Config) DBPath(defaultPath string) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return defaultPath
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "triad.yaml"
	}
	return filepath.Join(home, ".triad", "config.yaml")
}

// GenerateExample generates an example configuration file.
func GenerateExample() string {
	example := `# triad configuration file
# Place this file at ~/.triad/config.yaml

defaults:
  max_rounds: 10            # Rounds before the debate is over

# Content source per participant: mock or script
sources:
  Claude: mock
  Grok: mock
  GPT: mock

# Pre-written lines, used by participants bound to "script"
script:
  path: ""                  # e.g. ~/.triad/ubi.yaml

server:
  port: 8182

storage:
  path: ""                  # empty = ~/.triad/triad.db
`
	return example
}
