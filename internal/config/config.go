package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config file path.
const EnvPath = "SHIPREGIONS_CONFIG"

// DefaultPath is used when EnvPath is not set.
const DefaultPath = "config/regionctl.yaml"

// Config holds all configuration for the region tooling.
type Config struct {
	LogLevel string `yaml:"log_level"`
	MapPath  string `yaml:"map_path"`

	Regions  RegionsConfig  `yaml:"regions"`
	Search   SearchConfig   `yaml:"search"`
	Database DatabaseConfig `yaml:"database"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// RegionsConfig bounds region sizes.
type RegionsConfig struct {
	MaxTilesPerRegion int `yaml:"max_tiles_per_region"`
	MinRegionSize     int `yaml:"min_region_size"`
	MaxRegions        int `yaml:"max_regions"`
}

// SearchConfig tunes route queries.
type SearchConfig struct {
	MaxNodes     int `yaml:"max_nodes"`
	RegionsAhead int `yaml:"regions_ahead"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SnapshotConfig controls persistence of region ids.
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Domain  string `yaml:"domain"`
}

// Default returns Config with the tuned water region limits.
func Default() Config {
	return Config{
		LogLevel: "info",
		MapPath:  "maps/harbour.txt",
		Regions: RegionsConfig{
			MaxTilesPerRegion: 114,
			MinRegionSize:     12,
			MaxRegions:        65535,
		},
		Search: SearchConfig{
			MaxNodes:     10000,
			RegionsAhead: 2,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "shipregions",
			Password: "shipregions",
			DBName:   "shipregions",
			SSLMode:  "disable",
		},
		Snapshot: SnapshotConfig{
			Domain: "water",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Validate rejects limits the decomposition cannot work with.
func (c Config) Validate() error {
	if c.Regions.MaxTilesPerRegion <= 0 {
		return fmt.Errorf("regions.max_tiles_per_region must be positive, got %d", c.Regions.MaxTilesPerRegion)
	}
	if c.Regions.MinRegionSize <= 0 || c.Regions.MinRegionSize > c.Regions.MaxTilesPerRegion {
		return fmt.Errorf("regions.min_region_size %d outside [1, %d]", c.Regions.MinRegionSize, c.Regions.MaxTilesPerRegion)
	}
	if c.Regions.MaxRegions <= 0 || c.Regions.MaxRegions > 65535 {
		return fmt.Errorf("regions.max_regions %d outside [1, 65535]", c.Regions.MaxRegions)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
