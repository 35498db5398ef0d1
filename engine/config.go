package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/library"
	"github.com/tailored-agentic-units/goap/rpc"
)

// Config holds initialization parameters for every engine subsystem.
// Each section delegates to that subsystem's own Config.
//
//	{
//	  "planner": {"observer": "slog", "max_nodes": 500000},
//	  "library": {"path": "./problems"},
//	  "server":  {"addr": ":8080"}
//	}
type Config struct {
	Planner goap.Config    `json:"planner"`
	Library library.Config `json:"library"`
	Server  rpc.Config     `json:"server"`
}

// DefaultConfig returns a Config with each subsystem's defaults.
func DefaultConfig() Config {
	return Config{
		Planner: goap.DefaultConfig(),
		Library: library.DefaultConfig(),
		Server:  rpc.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Planner.Merge(&source.Planner)
	c.Library.Merge(&source.Library)
	c.Server.Merge(&source.Server)
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
