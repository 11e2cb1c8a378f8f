// Package config holds the settings shared by the scheduler packages and the
// CLI, with defaults and optional YAML file loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy selects how the SPARC selector uses detected hazards.
type Policy string

const (
	// PolicyFilter prefers hazard-free ready nodes and falls back to the
	// first ready node only when every candidate carries a hazard.
	PolicyFilter Policy = "filter"

	// PolicyObserve evaluates and reports hazards but always takes the first
	// ready node.
	PolicyObserve Policy = "observe"
)

// ValidPolicies lists the accepted policy values.
var ValidPolicies = []Policy{PolicyFilter, PolicyObserve}

// Config holds configuration for a scheduling run.
type Config struct {
	Scheduler     string `yaml:"scheduler"`       // registered scheduler name (default "sparc")
	Policy        Policy `yaml:"policy"`          // filter | observe
	ResetPerBlock bool   `yaml:"reset_per_block"` // clear load/muldiv trackers at each block start
	LogLevel      string `yaml:"log_level"`       // debug, info, warn, error
	LogFormat     string `yaml:"log_format"`      // text, json
	TraceDB       string `yaml:"trace_db"`        // SQLite trace database path, empty to disable
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Scheduler: "sparc",
		Policy:    PolicyFilter,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML config file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if c.Scheduler == "" {
		return fmt.Errorf("scheduler must not be empty")
	}
	if !IsValidPolicy(c.Policy) {
		return fmt.Errorf("invalid policy %q: must be one of %v", c.Policy, ValidPolicies)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	return nil
}

// IsValidPolicy checks if p is one of ValidPolicies.
func IsValidPolicy(p Policy) bool {
	for _, v := range ValidPolicies {
		if v == p {
			return true
		}
	}
	return false
}
