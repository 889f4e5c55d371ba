package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/anomaly"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Inputs   Inputs                          `yaml:"inputs"`
	Output   Output                          `yaml:"output"`
	Scoring  Scoring                         `yaml:"scoring"`
	Anomaly  Anomaly                         `yaml:"anomaly"`
	Cluster  Cluster                         `yaml:"cluster"`
	Forecast Forecast                        `yaml:"forecast"`
	Schemas  map[dataset.Kind]dataset.Schema `yaml:"schemas"`
	Server   Server                          `yaml:"server"`
	Schedule Schedule                        `yaml:"schedule"`
	Logging  Logging                         `yaml:"logging"`
}

// Inputs names the delimited source files. Empty paths mean the dataset
// is simply not loaded.
type Inputs struct {
	Enrolment   string `yaml:"enrolment"`
	Demographic string `yaml:"demographic"`
	Biometric   string `yaml:"biometric"`
}

type Output struct {
	Dir    string `yaml:"dir"`
	SQLite bool   `yaml:"sqlite"`
}

// Scoring carries the vulnerability weights; they must sum to 1.
type Scoring struct {
	AgeWeight           float64 `yaml:"age_weight"`
	GeoWeight           float64 `yaml:"geo_weight"`
	BioWeight           float64 `yaml:"bio_weight"`
	MigWeight           float64 `yaml:"mig_weight"`
	VulnerableThreshold float64 `yaml:"vulnerable_threshold"`
}

type Anomaly struct {
	Threshold        float64 `yaml:"threshold"`
	OutlierThreshold float64 `yaml:"outlier_threshold"`
}

type Cluster struct {
	K    int   `yaml:"k"`
	Seed int64 `yaml:"seed"`
}

type Forecast struct {
	Periods int `yaml:"periods"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Schedule struct {
	Cron string `yaml:"cron"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigDir returns the XDG config directory for uidai-analytics.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "uidai-analytics")
}

// DataDir returns the XDG data directory for uidai-analytics.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "uidai-analytics")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/uidai-analytics/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'uidai-analytics init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults and checking
// the scoring weights.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Scoring: Scoring{
			AgeWeight:           0.4,
			GeoWeight:           0.3,
			BioWeight:           0.2,
			MigWeight:           0.1,
			VulnerableThreshold: 0.7,
		},
		Anomaly:  Anomaly{Threshold: anomaly.DefaultThreshold, OutlierThreshold: anomaly.OutlierThreshold},
		Cluster:  Cluster{K: 5, Seed: 1},
		Forecast: Forecast{Periods: 12},
		Server:   Server{Port: 8000},
		Schedule: Schedule{Cron: "0 6 * * *"},
		Logging:  Logging{Level: "info", Format: "console"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	s := cfg.Scoring
	if sum := s.AgeWeight + s.GeoWeight + s.BioWeight + s.MigWeight; math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("scoring weights must sum to 1.0, got %g", sum)
	}

	return cfg, nil
}

// GetOutputDir returns the effective output directory from config or the
// XDG default.
func (c *Config) GetOutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	return DataDir()
}

// SchemaFor returns the configured schema override for a dataset kind, or
// the documented default.
func (c *Config) SchemaFor(kind dataset.Kind) dataset.Schema {
	if s, ok := c.Schemas[kind]; ok {
		return s
	}
	return dataset.DefaultSchema(kind)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
