package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// Block Registry: the closed set of block types and streams
// ─────────────────────────────────────────────────────────────

var (
	ErrDuplicateBlock = errors.New("duplicate block type")
	ErrUnknownStream  = errors.New("unknown stream")
)

// Registry holds block type definitions and named stream declarations.
// It is built once at startup and passed to the validator, the renderer
// and the synthesizer.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*Definition
	streams map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*Definition),
		streams: make(map[string]*Definition),
	}
}

// Register adds a block type under its key.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Key == "" {
		return fmt.Errorf("register block: missing key")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[def.Key]; exists {
		return fmt.Errorf("register block %q: %w", def.Key, ErrDuplicateBlock)
	}
	r.types[def.Key] = def
	return nil
}

// MustRegister is Register for startup wiring. Panics on duplicates.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(fmt.Sprintf("block registry: %v", err))
	}
}

// RegisterStream adds a named stream declaration.
func (r *Registry) RegisterStream(name string, def *Definition) error {
	if def == nil || def.Kind != KindStream {
		return fmt.Errorf("register stream %q: not a stream definition", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.streams[name]; exists {
		return fmt.Errorf("register stream %q: %w", name, ErrDuplicateBlock)
	}
	r.streams[name] = def
	return nil
}

// Lookup returns a block type by key.
func (r *Registry) Lookup(key string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[key]
	return d, ok
}

// Stream returns a stream declaration by name.
func (r *Registry) Stream(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.streams[name]
	return d, ok
}

// Types returns all registered block type keys, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.types))
	for k := range r.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Streams returns all registered stream names, sorted.
func (r *Registry) Streams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.streams))
	for k := range r.streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateStream parses raw stored stream data against the named stream
// declaration. A nil error means every block is well formed; otherwise
// the error is a *ValidationError listing every failure.
func (r *Registry) ValidateStream(name string, raw json.RawMessage) (StreamValue, error) {
	def, ok := r.Stream(name)
	if !ok {
		return nil, fmt.Errorf("validate %q: %w", name, ErrUnknownStream)
	}
	v := &validator{}
	value := v.stream(def, raw, name)
	if len(v.errs) > 0 {
		return nil, &ValidationError{Stream: name, Errors: v.errs}
	}
	return value, nil
}

// ParseStream is ValidateStream for already-validated stored data: it
// never fails on content errors and drops blocks it cannot parse.
func (r *Registry) ParseStream(name string, raw json.RawMessage) StreamValue {
	def, ok := r.Stream(name)
	if !ok {
		return nil
	}
	v := &validator{lenient: true}
	return v.stream(def, raw, name)
}
