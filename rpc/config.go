package rpc

// DefaultMaxNodes bounds searches requested over the network. Problems from
// clients are untrusted and an unlimited search is exponential in the
// number of actions.
const DefaultMaxNodes = 1_000_000

// Config controls the HTTP server that exposes the planner service.
type Config struct {
	Addr        string `json:"addr,omitempty"`
	MetricsPath string `json:"metrics_path,omitempty"`

	// MaxNodes caps every served search, overriding a larger or unlimited
	// planner setting. 0 leaves the planner's own limit in place.
	MaxNodes int `json:"max_nodes,omitempty"`
}

// DefaultConfig returns a Config listening on :8080 with metrics under
// /metrics and served searches capped at DefaultMaxNodes.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		MetricsPath: "/metrics",
		MaxNodes:    DefaultMaxNodes,
	}
}

// Merge copies the non-zero fields of source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}

	if source.MetricsPath != "" {
		c.MetricsPath = source.MetricsPath
	}

	if source.MaxNodes > 0 {
		c.MaxNodes = source.MaxNodes
	}
}
