package goap

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
)

// State is an ordered set of world facts keyed by name.
//
// Iteration follows insertion order; order carries no meaning for
// comparisons. Set and Remove modify the receiver and are meant for building
// states before planning. Copy and Merge return new states and leave their
// inputs untouched, which is what the planner relies on.
//
// A nil *State reads as the empty state.
type State struct {
	keys   []string
	values map[string]any
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// StateOf builds a State from alternating key/value arguments.
// It panics if a key is not a string or a value is missing.
//
//	s := goap.StateOf("hasWood", true, "hasAxe", false)
func StateOf(pairs ...any) *State {
	if len(pairs)%2 != 0 {
		panic("goap.StateOf: odd number of arguments")
	}

	s := NewState()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("goap.StateOf: key at position %d is %T, not string", i, pairs[i]))
		}
		s.Set(key, pairs[i+1])
	}
	return s
}

// Set stores value under key and returns the receiver for chaining.
// Overwriting an existing key keeps its original position.
func (s *State) Set(key string, value any) *State {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// Get returns the value for key and whether it is present.
func (s *State) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Exists reports whether key is present.
func (s *State) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Remove deletes key. Missing keys are ignored.
func (s *State) Remove(key string) {
	if s == nil {
		return
	}
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
}

// Len returns the number of keys.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// All iterates key/value pairs in insertion order.
func (s *State) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if s == nil {
			return
		}
		for _, k := range s.keys {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

// Copy returns an independent snapshot of s. Values are copied as-is; the
// planner treats them as immutable.
func (s *State) Copy() *State {
	out := &State{
		keys:   make([]string, 0, s.Len()),
		values: make(map[string]any, s.Len()),
	}
	if s == nil {
		return out
	}
	out.keys = append(out.keys, s.keys...)
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

// Merge returns a new State holding s overlaid with other. Values from other
// win on conflicting keys. Neither input is modified.
func (s *State) Merge(other *State) *State {
	out := s.Copy()
	for k, v := range other.All() {
		out.Set(k, v)
	}
	return out
}

// SatisfiedBy reports whether every pair in s is present in candidate with an
// equal value. The empty state is satisfied by anything.
func (s *State) SatisfiedBy(candidate *State) bool {
	for k, want := range s.All() {
		got, ok := candidate.Get(k)
		if !ok || !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

// Equal reports whether s and other hold the same pairs, ignoring order.
func (s *State) Equal(other *State) bool {
	return s.Len() == other.Len() && s.SatisfiedBy(other)
}

// String renders the state as {k: v, ...} in insertion order.
func (s *State) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for k, v := range s.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %v", k, v)
	}
	b.WriteByte('}')
	return b.String()
}

// valuesEqual compares with == when both dynamic types are comparable and
// falls back to reflect.DeepEqual otherwise, so maps or slices decoded from
// wire formats compare instead of panicking.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
