// Package hostfuncs implements the six host functions a sandboxed guest
// imports (spec.md §6.2), each backed by the Capability Bridge
// (internal/application/bridge). Grounded on reglet's own
// internal/infrastructure/wasm/hostfuncs package: one small file per
// function family, a shared memory helper file, and a context-carried
// plugin name so handlers can attribute requests without threading an
// extra parameter through every wazero callback signature.
package hostfuncs

import "context"

type contextKey struct{ name string }

var pluginNameKey = &contextKey{name: "plugin_name"}

// WithPluginName attaches the owning extension's name to ctx so host
// function handlers can log/attribute requests to it.
func WithPluginName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, pluginNameKey, name)
}

// PluginNameFromContext retrieves the name WithPluginName attached, if any.
func PluginNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(pluginNameKey).(string)
	return name, ok
}
