package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/brkthru/bravo-1-sub003/internal/calc"
)

// Config is the top-level application config plus the version definitions
// resolved from disk.
type Config struct {
	Calculation CalculationConfig `koanf:"calculation"`
	Logging     LoggingConfig     `koanf:"logging"`

	// VersionLoading is populated by Load after parsing version files.
	VersionLoading VersionLoadingConfig `koanf:"-"`
}

type CalculationConfig struct {
	// VersionsDir holds YAML calculation-version definitions; empty means
	// only the built-in version is available.
	VersionsDir string `koanf:"versions_dir"`

	// DefaultVersion is the version unpinned calculations resolve to.
	DefaultVersion string `koanf:"default_version"`
}

type LoggingConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

type VersionLoadingConfig struct {
	Dir      string
	Versions []*calc.Version
}

func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q (must be debug, info, warn or error)", c.Logging.Level)
	}
	if strings.TrimSpace(c.Calculation.DefaultVersion) == "" {
		return fmt.Errorf("calculation.default_version is required")
	}
	return nil
}

// Load parses config from file + env, validates it, then loads calculation
// version definitions from the configured directory.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"calculation.versions_dir":    "",
		"calculation.default_version": "1.0.0",
		"logging.level":               "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("BRAVO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BRAVO_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Calculation.VersionsDir != "" {
		versions, err := calc.LoadVersionsFromDir(cfg.Calculation.VersionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load calculation versions: %w", err)
		}
		cfg.VersionLoading = VersionLoadingConfig{
			Dir:      cfg.Calculation.VersionsDir,
			Versions: versions,
		}
	}

	return &cfg, nil
}
