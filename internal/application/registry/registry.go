// Package registry implements the Extension Registry (spec.md §4.1): the
// name→extension mapping that Discovery populates and that the Composer
// and Dispatcher read from.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cyrup-ai/kargo/internal/application/ports"
	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

// Registry owns every loaded extension keyed by its declared command name.
// Safe for concurrent reads; Insert is safe to call concurrently with
// itself (Discovery may probe candidates in parallel) but must not be
// called once Discovery has handed the Registry to the Composer (spec.md
// §4.1 "no concurrent mutation after Discovery completes").
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]extension.Extension
	order   []string // insertion order, for deterministic Iter (spec.md §4.1)
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string]extension.Extension)}
}

// Insert adds an extension under the name its Spec advertises. A second
// extension advertising an already-present name is rejected with
// DuplicateNameError; the caller (Discovery) is expected to log and drop
// it — first-loaded wins (I1, P1, P2).
func (r *Registry) Insert(ctx context.Context, ext extension.Extension) error {
	spec, err := ext.Spec(ctx)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[spec.Name]; exists {
		return &extension.DuplicateNameError{Name: spec.Name}
	}

	r.byName[spec.Name] = ext
	r.order = append(r.order, spec.Name)
	return nil
}

// Lookup returns the extension registered under name, if any.
func (r *Registry) Lookup(name string) (extension.Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.byName[name]
	return ext, ok
}

// Iter returns every (name, extension) pair in insertion order, stable
// across calls so help text composed from it never jitters.
func (r *Registry) Iter() []ports.NamedExtension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.NamedExtension, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, ports.NamedExtension{Name: name, Ext: r.byName[name]})
	}
	return out
}

// Len reports how many extensions are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// CloseAll closes every registered extension, logging (not returning) any
// close error — process shutdown must not fail because one extension's
// Close misbehaved.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.RLock()
	exts := make([]extension.Extension, 0, len(r.byName))
	for _, e := range r.byName {
		exts = append(exts, e)
	}
	r.mu.RUnlock()

	for _, e := range exts {
		if err := e.Close(ctx); err != nil {
			slog.Warn("extension close failed", "error", err)
		}
	}
}
