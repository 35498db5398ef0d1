package goap

// Config controls a Planner. It is read once by New; the Observer field is a
// registry name so the whole struct can come from JSON.
//
// Example JSON:
//
//	{
//	  "observer": "slog",
//	  "max_nodes": 200000,
//	  "max_depth": 12,
//	  "concurrency": 8
//	}
type Config struct {
	// Observer names a registered observer ("noop", "slog", ...).
	Observer string `json:"observer"`

	// MaxNodes caps the search tree size, root included. 0 means unlimited.
	MaxNodes int `json:"max_nodes,omitempty"`

	// MaxDepth stops expansion below this many actions. 0 means unlimited.
	MaxDepth int `json:"max_depth,omitempty"`

	// Concurrency bounds PlanAll. Values below 1 mean one problem at a time.
	Concurrency int `json:"concurrency,omitempty"`

	// AcceptSatisfiedStart returns an empty, successful plan when the
	// current state already satisfies the goal instead of searching.
	AcceptSatisfiedStart bool `json:"accept_satisfied_start,omitempty"`
}

// DefaultConfig returns a planner configuration with no search limits,
// slog logging and four concurrent problems for PlanAll.
func DefaultConfig() Config {
	return Config{
		Observer:    "slog",
		Concurrency: 4,
	}
}

// Merge copies the non-zero fields of source into c.
func (c *Config) Merge(source *Config) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxNodes > 0 {
		c.MaxNodes = source.MaxNodes
	}

	if source.MaxDepth > 0 {
		c.MaxDepth = source.MaxDepth
	}

	if source.Concurrency > 0 {
		c.Concurrency = source.Concurrency
	}

	if source.AcceptSatisfiedStart {
		c.AcceptSatisfiedStart = true
	}
}
