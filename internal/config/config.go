// Package config loads the optional --config run-profile file: default
// values for the handful of flags worth pre-configuring (table name,
// synthetic column names, SQL dialect, bundle/chunk sizing), with
// PARAM_DBG-style environment fallback for the debug flag.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML run profile.
type Config struct {
	Table   string `yaml:"table"`
	DBName  string `yaml:"dbname"`
	SQL     string `yaml:"sql"`
	Bundle  int    `yaml:"bundle"`
	Chunk   int    `yaml:"chunk"`
	Add     string `yaml:"add"`
	Sid     string `yaml:"sid"`
	Rid     string `yaml:"rid"`
	Debug   bool   `yaml:"debug"`
}

// Load reads and parses a YAML config file, then fills SQL, DBName and
// Debug from environment fallback when the file left them at their zero
// value, matching the precedence CLI flags > config file > environment.
// The other fields have no environment fallback.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv fills in empty fields from environment variables. YAML values
// take precedence; env vars are used only as fallback, mirroring the
// teacher's connection-field fallback shape.
func (c *Config) applyEnv() {
	if c.SQL == "" {
		c.SQL = envOr("FITS2DB_SQL")
	}
	if c.DBName == "" {
		c.DBName = envOr("FITS2DB_DBNAME")
	}
	if !c.Debug {
		c.Debug = envOr("PARAM_DBG") != ""
	}
}

func envOr(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
