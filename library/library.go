package library

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/observability"
)

// Extensions are the key suffixes recognised as problem documents, in lookup
// order. Put always writes the first one.
var Extensions = []string{".yaml", ".yml", ".json"}

// Library names, loads and saves problems kept in a Store.
//
// Decoded problems are cached, so repeated lookups return the same
// *goap.Action pointers. Planning only reads them; callers that edit a
// returned problem should Put it back rather than mutate it in place.
// All methods are safe for concurrent use.
type Library struct {
	store    Store
	observer observability.Observer

	mu    sync.RWMutex
	cache map[string]goap.Problem
}

// New returns a Library over store. A nil observer discards events.
func New(store Store, observer observability.Observer) *Library {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Library{
		store:    store,
		observer: observer,
		cache:    make(map[string]goap.Problem),
	}
}

// Names lists the problems in the store, sorted. A problem saved under
// several extensions is listed once.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	keys, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	var names []string
	for _, key := range keys {
		name, ok := nameOf(key)
		if !ok {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Problem returns the named problem, decoding it on first use. A document
// without a name field takes the library name.
func (l *Library) Problem(ctx context.Context, name string) (goap.Problem, error) {
	l.mu.RLock()
	p, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	entry, err := l.find(ctx, name)
	if err != nil {
		return goap.Problem{}, err
	}

	p, err = Decode(entry.Value)
	if err != nil {
		return goap.Problem{}, fmt.Errorf("%s: %w", entry.Key, err)
	}
	if p.Name == "" {
		p.Name = name
	}

	l.mu.Lock()
	if cached, ok := l.cache[name]; ok {
		p = cached
	} else {
		l.cache[name] = p
	}
	l.mu.Unlock()

	l.observer.OnEvent(ctx, observability.NewEvent(EventLoad, observability.LevelVerbose, "library.Library", map[string]any{
		"name":    name,
		"key":     entry.Key,
		"actions": len(p.Actions),
	}))

	return p, nil
}

// Problems loads several problems, failing on the first error.
func (l *Library) Problems(ctx context.Context, names ...string) ([]goap.Problem, error) {
	problems := make([]goap.Problem, 0, len(names))
	for _, name := range names {
		p, err := l.Problem(ctx, name)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// Put encodes p and stores it as name + ".yaml", replacing any cached copy.
func (l *Library) Put(ctx context.Context, name string, p goap.Problem) error {
	data, err := Encode(p)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, name, err)
	}

	key := name + Extensions[0]
	if err := l.store.Save(ctx, Entry{Key: key, Value: data}); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()

	l.observer.OnEvent(ctx, observability.NewEvent(EventSave, observability.LevelVerbose, "library.Library", map[string]any{
		"name":  name,
		"key":   key,
		"bytes": len(data),
	}))

	return nil
}

// Remove deletes every stored document for name.
func (l *Library) Remove(ctx context.Context, name string) error {
	keys := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		keys = append(keys, name+ext)
	}
	if err := l.store.Delete(ctx, keys...); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()

	l.observer.OnEvent(ctx, observability.NewEvent(EventRemove, observability.LevelVerbose, "library.Library", map[string]any{
		"name": name,
	}))

	return nil
}

func (l *Library) find(ctx context.Context, name string) (Entry, error) {
	for _, ext := range Extensions {
		entries, err := l.store.Load(ctx, name+ext)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return Entry{}, err
		}
		return entries[0], nil
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrProblemNotFound, name)
}

func nameOf(key string) (string, bool) {
	ext := path.Ext(key)
	if !slices.Contains(Extensions, ext) {
		return "", false
	}
	return key[:len(key)-len(ext)], true
}
