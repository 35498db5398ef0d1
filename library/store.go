// Package library stores planning problems as YAML or JSON documents and
// decodes them into goap.Problem values.
//
// A Store moves raw bytes in and out of storage; Library sits on top, mapping
// problem names to keys and caching decoded problems for the life of the
// process.
package library

import "context"

// Entry is one stored document. Keys are /-separated relative paths such
// as "forest/firewood.yaml".
type Entry struct {
	Key   string
	Value []byte
}

// Store reads and writes raw entries. Implementations do no caching.
type Store interface {
	// List returns every key in the store.
	List(ctx context.Context) ([]string, error)
	// Load returns the entries for keys, failing with ErrKeyNotFound on the
	// first missing key.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save creates or replaces entries.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
