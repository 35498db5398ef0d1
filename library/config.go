package library

import "github.com/tailored-agentic-units/goap/observability"

// Config locates the problem library.
type Config struct {
	Path string `json:"path,omitempty"` // root directory; empty disables the library
}

// DefaultConfig returns a configuration with the library disabled.
func DefaultConfig() Config {
	return Config{}
}

// Merge copies the non-zero fields of source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewLibrary opens a file-backed Library. It returns nil when cfg.Path is
// empty.
func NewLibrary(cfg *Config, observer observability.Observer) (*Library, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return New(NewFileStore(cfg.Path), observer), nil
}
