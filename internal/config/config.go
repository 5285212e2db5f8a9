package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"skillradar/internal/assessment"
	"skillradar/internal/chart"
	"skillradar/internal/importer"
)

// Environment overrides.
const (
	EnvLogMode    = "SKILLRADAR_LOG_MODE"
	EnvExportsDir = "SKILLRADAR_EXPORTS_DIR"
)

// Config is the workspace configuration file.
type Config struct {
	MainDirection string       `yaml:"main_direction"`
	LogMode       string       `yaml:"log_mode"`
	ExportsDir    string       `yaml:"exports_dir"`
	Chart         ChartConfig  `yaml:"chart"`
	Import        ImportConfig `yaml:"import"`
}

type ChartConfig struct {
	Size int `yaml:"size"`
}

type ImportConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		MainDirection: assessment.DefaultMainDirection,
		LogMode:       "dev",
		Chart:         ChartConfig{Size: chart.DefaultSize},
		Import:        ImportConfig{Workers: importer.DefaultWorkers},
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvLogMode)); v != "" {
		c.LogMode = v
	}
	if v := strings.TrimSpace(getenv(EnvExportsDir)); v != "" {
		c.ExportsDir = v
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.MainDirection) == "" {
		problems = append(problems, "main_direction must not be empty")
	}
	switch strings.ToLower(c.LogMode) {
	case "", "dev", "development", "prod", "production", "debug":
	default:
		problems = append(problems, fmt.Sprintf("log_mode %q is not one of dev, prod, debug", c.LogMode))
	}
	if c.Chart.Size < 200 || c.Chart.Size > 4000 {
		problems = append(problems, fmt.Sprintf("chart.size %d must be between 200 and 4000", c.Chart.Size))
	}
	if c.Import.Workers < 1 || c.Import.Workers > 64 {
		problems = append(problems, fmt.Sprintf("import.workers %d must be between 1 and 64", c.Import.Workers))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Template is written by `skillradar init`.
const Template = `# skillradar workspace configuration
main_direction: "Scenarios / Iron Range"
log_mode: dev
# exports_dir: exports
chart:
  size: 800
import:
  workers: 4
`
