// Package config loads pymove defaults from .pymove.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/pymove/internal/codegen"
	"github.com/phobologic/pymove/internal/model"
)

// FileName is the config file looked up in the working directory.
const FileName = ".pymove.yaml"

// Config holds the relocation defaults. Command-line flags override them.
type Config struct {
	RemoveFromSource bool     `yaml:"remove_from_source"`
	Position         string   `yaml:"position"`
	HandleConflicts  string   `yaml:"handle_conflicts"`
	Generate         Generate `yaml:"generate"`
}

// Generate configures the code generator.
type Generate struct {
	Model string `yaml:"model"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Position:        "bottom",
		HandleConflicts: string(model.Overwrite),
		Generate:        Generate{Model: codegen.DefaultModel},
	}
}

// Load reads FileName from dir. A missing file yields Default. Keys absent
// from the file keep their default values.
func Load(dir string) (*Config, error) {
	return load(filepath.Join(dir, FileName), true)
}

// LoadFile reads the config at path, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, missingOK bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if missingOK && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the conflict policy.
func (c *Config) Validate() error {
	_, err := model.ParsePolicy(c.HandleConflicts)
	return err
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
