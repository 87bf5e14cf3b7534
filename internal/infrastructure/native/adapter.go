// Package native implements the Native Extension Adapter (spec.md §4.3):
// loading a Go plugin shared object, resolving the fixed ABI symbol, and
// wrapping the returned object as a generic extension.Extension.
//
// This package uses the standard library's "plugin" package directly
// rather than a third-party loader — spec.md §4.3 describes exactly Go's
// plugin.Open/Lookup semantics ("immediate symbol resolution", "RTLD_LOCAL
// equivalent", "resolve exactly one exported symbol"), so the stdlib *is*
// the ecosystem mechanism here, not a stdlib fallback. See DESIGN.md.
package native

import (
	"context"
	"fmt"
	"plugin"
	"sync"

	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

// CreateSymbol is the single exported symbol every native plugin must
// provide (spec.md §6.1).
const CreateSymbol = "KargoPluginCreate"

// PluginAPI is the interface a native plugin's constructor must return.
// It mirrors extension.Extension minus Kind/Close, which the adapter
// supplies itself.
type PluginAPI interface {
	Spec(ctx context.Context) (extension.CommandSpec, error)
	Run(ctx context.Context, ec extension.ExecutionContext) error
}

// handles retains every *plugin.Plugin for the process lifetime so their
// resolved symbols are never unloaded before exit (spec.md §9 "Native
// library lifetime": the handle strictly outlives the object it produced).
var (
	handlesMu sync.Mutex
	handles   []*plugin.Plugin
)

// Extension wraps a loaded native plugin object.
type Extension struct {
	path string
	api  PluginAPI
}

var _ extension.Extension = (*Extension)(nil)

// Load opens the shared object at path, resolves CreateSymbol, invokes it,
// and returns the wrapped Extension. Failures here are always
// LoadFailure-kind and are expected to be logged and the candidate
// skipped by Discovery — Load itself never panics or aborts.
func Load(path string) (*Extension, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("native: open %s: %w", path, err)
	}

	handlesMu.Lock()
	handles = append(handles, p)
	handlesMu.Unlock()

	sym, err := p.Lookup(CreateSymbol)
	if err != nil {
		return nil, fmt.Errorf("native: lookup %s in %s: %w", CreateSymbol, path, err)
	}

	create, ok := sym.(func() PluginAPI)
	if !ok {
		return nil, fmt.Errorf("native: %s in %s has wrong signature (want func() PluginAPI)", CreateSymbol, path)
	}

	api := create()
	if api == nil {
		return nil, fmt.Errorf("native: %s in %s returned nil", CreateSymbol, path)
	}

	return &Extension{path: path, api: api}, nil
}

func (e *Extension) Spec(ctx context.Context) (extension.CommandSpec, error) {
	return e.api.Spec(ctx)
}

func (e *Extension) Run(ctx context.Context, ec extension.ExecutionContext) error {
	return e.api.Run(ctx, ec)
}

// Close is a no-op: the shared-object handle and its symbols live for the
// process lifetime (see handles above); unloading before exit is
// disallowed (spec.md §9).
func (e *Extension) Close(context.Context) error { return nil }

func (e *Extension) Kind() extension.Kind { return extension.KindNative }

// Path returns the filesystem path this extension was loaded from, for
// diagnostics.
func (e *Extension) Path() string { return e.path }
