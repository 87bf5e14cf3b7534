// Package extension defines the core domain types shared by every extension
// kind the host can load: the command specification it advertises, the
// context it executes with, and the polymorphic Extension interface itself.
package extension

import "context"

// Extension is the capability set every loaded plugin exposes, regardless
// of whether it is backed by a native shared library or a sandboxed WASM
// module. Implementations live in internal/infrastructure/native and
// internal/infrastructure/sandbox.
type Extension interface {
	// Spec returns the command specification this extension contributes to
	// the composed surface. Implementations should cache the result; Spec
	// may be called more than once (e.g. by the Composer and again by
	// diagnostics tooling).
	Spec(ctx context.Context) (CommandSpec, error)

	// Run executes the extension for one invocation. A non-nil returned
	// error is logged by the Dispatcher, which then reports the host-failure
	// exit code to its caller.
	Run(ctx context.Context, ec ExecutionContext) error

	// Close releases any resources the extension holds (native library
	// handles are intentionally NOT released here — see
	// internal/infrastructure/native).
	Close(ctx context.Context) error

	// Kind identifies which adapter produced this extension, for
	// diagnostics and `kargo plugins list`.
	Kind() Kind
}

// Kind distinguishes the two extension flavors spec.md §3 defines.
type Kind string

const (
	KindNative  Kind = "native"
	KindSandbox Kind = "sandbox"
)

// ExecutionContext is passed by value into every Extension.Run call.
type ExecutionContext struct {
	// Argv is the ordered residual argument vector: [subcommand-name,
	// ...raw tokens after it]. See spec.md §4.8 residual-argument recovery.
	Argv []string `json:"argv"`

	// CurrentDir is the absolute working directory of the host invocation.
	CurrentDir string `json:"current_dir"`

	// ConfigDir is the absolute path to the host's configuration directory.
	ConfigDir string `json:"config_dir"`
}
