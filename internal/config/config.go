package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// ConfigFileName is the project configuration file looked up at the dataset
// root.
const ConfigFileName = ".stemma.yaml"

// Environment variables overlaying the project configuration.
const (
	EnvRuleset          = "STEMMA_RULESET"
	EnvWarningsAsErrors = "STEMMA_WARNINGS_AS_ERRORS"
	EnvColor            = "STEMMA_COLOR"
	EnvExclusions       = "STEMMA_EXCLUSIONS"
)

// Color modes accepted by ProjectConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ProjectConfig is the optional per-dataset configuration read from
// .stemma.yaml at the dataset root.
type ProjectConfig struct {
	// Ruleset names the default ruleset when neither a flag nor the
	// environment selects one
	Ruleset string `yaml:"ruleset"`

	// WarningsAsErrors fails validation runs on warning-class findings
	WarningsAsErrors bool `yaml:"warnings_as_errors"`

	// Exclusions extends the reserved root-level names skipped during file
	// discovery
	Exclusions []string `yaml:"exclusions"`

	// Color forces styled or plain terminal output: auto, always or never.
	// Empty means auto.
	Color string `yaml:"color"`
}

// Validate checks if the ProjectConfig has valid values.
func (c *ProjectConfig) Validate() error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return fmt.Errorf("color mode %q (known: %s, %s, %s): %w",
			c.Color, ColorAuto, ColorAlways, ColorNever, stemma.ErrUsage)
	}
}

// Load reads the project configuration file at the dataset root. Returns
// ErrConfigNotFound when the file does not exist; callers can check for it
// with errors.Is(err, stemma.ErrConfigNotFound).
func Load(datasetPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(datasetPath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", configPath, stemma.ErrConfigNotFound)
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Resolve loads the project configuration and overlays STEMMA_* environment
// variables on top of it. A missing file is not an error; the overlay then
// starts from the zero configuration.
func Resolve(datasetPath string) (*ProjectConfig, error) {
	cfg, err := Load(datasetPath)
	if errors.Is(err, stemma.ErrConfigNotFound) {
		cfg = &ProjectConfig{}
	} else if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ProjectConfig) applyEnv() error {
	if value, ok := os.LookupEnv(EnvRuleset); ok {
		c.Ruleset = value
	}
	if value, ok := os.LookupEnv(EnvWarningsAsErrors); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s=%q is not a boolean: %w", EnvWarningsAsErrors, value, stemma.ErrUsage)
		}
		c.WarningsAsErrors = parsed
	}
	if value, ok := os.LookupEnv(EnvColor); ok {
		c.Color = value
	}
	if value, ok := os.LookupEnv(EnvExclusions); ok {
		c.Exclusions = splitList(value)
	}
	return nil
}

// splitList parses a comma-separated environment value, dropping empty
// items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
